/*
 * chain.go - 不可变任务树构建
 *
 * 核心组件：
 *   - node: 任务树节点，包装一个命令与有序的依赖边，构造后不再修改
 *   - Chain[O]: 以 node 为根的任务树，每次构建调用返回新的 Chain
 *   - Plan: 任务树的可检查描述，可序列化为 JSON
 *
 * 输出顺序：
 *   节点自身的输出在前，随后按附加顺序依次是每个并行兄弟的全部输出（深度优先）。
 *   顺序边（Before / Into）的目标不产生输出。
 */

package command

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
)

// EdgeKind 依赖边类型
type EdgeKind uint8

const (
	// EdgeSequentialDiscard 目标先执行完毕，结果丢弃
	EdgeSequentialDiscard EdgeKind = iota + 1
	// EdgeSequentialPassthrough 目标的唯一输出作为当前命令的输入
	EdgeSequentialPassthrough
	// EdgeParallel 目标作为独立兄弟并发执行
	EdgeParallel
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeSequentialDiscard:
		return "SEQUENTIAL_DISCARD"
	case EdgeSequentialPassthrough:
		return "SEQUENTIAL_PASSTHROUGH"
	case EdgeParallel:
		return "PARALLEL"
	default:
		return "UNKNOWN"
	}
}

type edge struct {
	kind EdgeKind
	to   *node
}

// node 任务树节点。
// 执行时先按声明顺序依次解析所有顺序边，每条边完全解析后才开始下一条；
// 随后自身命令与所有并行边的目标同时启动。
type node struct {
	cmd   task
	edges []edge
	// input Bind 绑定的固定输入
	input any
}

func (n *node) with(e edge) *node {
	edges := make([]edge, len(n.edges), len(n.edges)+1)
	copy(edges, n.edges)
	return &node{
		cmd:   n.cmd,
		edges: append(edges, e),
		input: n.input,
	}
}

// width 节点产生的输出个数
func (n *node) width() int {
	w := 1
	for _, e := range n.edges {
		if e.kind == EdgeParallel {
			w += e.to.width()
		}
	}
	return w
}

// outputs 按声明顺序返回输出节点的 key
func (n *node) outputs(keys []string) []string {
	keys = append(keys, n.cmd.info().Key)
	for _, e := range n.edges {
		if e.kind == EdgeParallel {
			keys = e.to.outputs(keys)
		}
	}
	return keys
}

// validate 检查 nil 命令、缺失的注册表以及重复出现的命令实例
func (n *node) validate(seen map[task]struct{}) error {
	if n == nil || n.cmd == nil {
		return ErrNilCommand
	}
	if n.cmd.registry() == nil {
		return fmt.Errorf("command[%s]: %w", n.cmd.info().Key, ErrNilRegistry)
	}
	if _, ok := seen[n.cmd]; ok {
		return fmt.Errorf("command[%s]: %w", n.cmd.info().Key, ErrDuplicateCommand)
	}
	seen[n.cmd] = struct{}{}

	for _, e := range n.edges {
		if err := e.to.validate(seen); err != nil {
			return err
		}
	}
	return nil
}

// Graph 可以作为依赖边目标的任务树，*Command[O] 与 Chain[O] 都实现了该接口
type Graph interface {
	graph() (*node, error)
}

// Source 输出类型为 O 的任务树
type Source[O any] interface {
	Graph
	Chain() Chain[O]
}

// Chain 输出类型为 O 的不可变任务树。
// 构建过程中的第一个错误会被记录，并在 Submit / Execute 时返回。
//
// 示例：
//
//	tree := command.Into(loadUser, renderProfile).
//		Before(warmCache).
//		InParallel(loadBanner)
//
//	r := tree.Submit(ctx)        // 立即返回
//	pages, err := r.Get(ctx)     // [profile, banner]
type Chain[O any] struct {
	root *node
	err  error
}

func (c Chain[O]) graph() (*node, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.root == nil {
		return nil, ErrNilCommand
	}
	return c.root, nil
}

// Chain 实现 Source
func (c Chain[O]) Chain() Chain[O] {
	return c
}

// Err 返回构建过程中记录的错误
func (c Chain[O]) Err() error {
	_, err := c.graph()
	return err
}

// Before 让 others 在当前任务树之前依次执行完毕（成功或降级），其结果被丢弃。
// 当前节点的命令以及它的并行兄弟都要等 others 全部解析后才开始。
// 任一 other 失败且未恢复时，当前节点不会运行，其输出全部以该失败结束。
func (c Chain[O]) Before(others ...Graph) Chain[O] {
	root, err := c.graph()
	if err != nil {
		return Chain[O]{err: err}
	}
	for _, other := range others {
		if other == nil {
			return Chain[O]{err: ErrNilCommand}
		}
		on, err := other.graph()
		if err != nil {
			return Chain[O]{err: err}
		}
		root = root.with(edge{kind: EdgeSequentialDiscard, to: on})
	}
	return Chain[O]{root: root}
}

// InParallel 把 others 作为独立兄弟加入任务树。
// 兄弟之间互不提供输入，并发执行于各自（可能相同）的执行组。
func (c Chain[O]) InParallel(others ...Source[O]) Chain[O] {
	root, err := c.graph()
	if err != nil {
		return Chain[O]{err: err}
	}
	for _, other := range others {
		if other == nil {
			return Chain[O]{err: ErrNilCommand}
		}
		on, err := other.graph()
		if err != nil {
			return Chain[O]{err: err}
		}
		root = root.with(edge{kind: EdgeParallel, to: on})
	}
	return Chain[O]{root: root}
}

// Into 把生产者的结果作为消费者的唯一输入。
// 生产者完全解析（成功或降级）后消费者才开始；生产者失败且未恢复时消费者不会运行。
// 生产者必须只有一个输出，带并行兄弟的生产者返回 ErrAmbiguousInput。
func Into[I, O any](producer Source[I], consumer *Step[I, O]) Chain[O] {
	if producer == nil || consumer == nil || consumer.base == nil {
		return Chain[O]{err: ErrNilCommand}
	}
	pn, err := producer.graph()
	if err != nil {
		return Chain[O]{err: err}
	}
	if pn.width() != 1 {
		return Chain[O]{err: fmt.Errorf("into command[%s]: %w", consumer.key, ErrAmbiguousInput)}
	}
	return Chain[O]{root: &node{
		cmd:   consumer.base,
		edges: []edge{{kind: EdgeSequentialPassthrough, to: pn}},
	}}
}

// Outputs 按声明顺序返回输出节点的 key，长度等于提交后 Result 的长度
func (c Chain[O]) Outputs() ([]string, error) {
	root, err := c.graph()
	if err != nil {
		return nil, err
	}
	return root.outputs(nil), nil
}

// Submit 异步提交整棵任务树，立即返回。
func (c Chain[O]) Submit(ctx context.Context) *Result[O] {
	root, err := c.graph()
	if err == nil {
		err = root.validate(make(map[task]struct{}))
	}
	if err != nil {
		return failedResult[O](err)
	}

	r := newResult[O](root.outputs(nil))
	go run(ctx, root, r.slots)
	return r
}

// Execute 同步执行，阻塞到整棵树解析完成，返回第一个输出节点的值。
// 与 Get 相同，任一输出未恢复失败时返回声明顺序上的第一个失败。
func (c Chain[O]) Execute(ctx context.Context) (O, error) {
	var zero O
	values, err := c.Submit(ctx).Get(ctx)
	if err != nil {
		return zero, err
	}
	if len(values) == 0 {
		return zero, ErrNoOutput
	}
	return values[0], nil
}

// ====== 可检查描述 ======

// Plan 任务树节点的描述
type Plan struct {
	Key   string     `json:"key"`
	Group string     `json:"group"`
	Bound bool       `json:"bound,omitempty"`
	Edges []PlanEdge `json:"edges,omitempty"`
}

// PlanEdge 依赖边的描述
type PlanEdge struct {
	Kind string `json:"kind"`
	To   *Plan  `json:"to"`
}

// Describe 返回任务树的描述
func (c Chain[O]) Describe() (*Plan, error) {
	root, err := c.graph()
	if err != nil {
		return nil, err
	}
	return describe(root), nil
}

func describe(n *node) *Plan {
	info := n.cmd.info()
	p := &Plan{Key: info.Key, Group: info.Group, Bound: n.input != nil}
	for _, e := range n.edges {
		p.Edges = append(p.Edges, PlanEdge{Kind: e.kind.String(), To: describe(e.to)})
	}
	return p
}

// JSON 将描述序列化为 JSON
func (p *Plan) JSON() (string, error) {
	return sonic.MarshalString(p)
}
