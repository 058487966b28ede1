/*
 * command 包 - 命令执行与链式编排引擎
 *
 * 概述：
 *   命令（Command / Step）是最小的异步工作单元，运行在所属执行组的工作协程上。
 *   通过 Before / Into / InParallel 把命令组合为不可变的任务树（Chain），
 *   提交后得到 Result，按声明顺序读取每个输出节点的结果。
 *
 * 三种依赖边：
 *
 *   1. Before（顺序，丢弃结果）
 *      other 先执行完毕（成功或降级），结果丢弃，之后当前节点才开始
 *
 *   2. Into（顺序，透传结果）
 *      生产者的唯一输出作为消费者的输入；编译期检查类型
 *
 *   3. InParallel（并行）
 *      兄弟节点各自独立执行，互不提供输入，只共享结果集
 *
 * 执行模型：
 *   - 每个命令体只在执行组的工作协程上运行；协调任务树的逻辑运行在独立的协程中，
 *     工作协程永远不会等待同一池中的其他任务，避免池耗尽导致的死锁
 *   - 同步访问 Execute 阻塞到整棵树解析完成，返回第一个输出
 *   - 异步提交 Submit 立即返回 Result，成功 / 失败钩子在执行命令的工作协程上触发
 *   - 结果按声明顺序排列，与完成顺序无关
 *
 * 失败处理：
 *   - 命令体失败且配置了降级：调用失败钩子，返回降级值，Outcome 标记为 Recovered
 *   - 命令体失败且无降级：ExecutionFailure 向下游传播，顺序边的消费者不会运行
 *   - 并行兄弟的失败相互隔离
 *   - 等待超时得到 TimeoutFailure，执行组关闭得到 ShutdownFailure
 *
 * 快速开始：
 *
 *	reg := executor.NewRegistry()
 *	defer reg.Close(ctx)
 *
 *	load := command.New(reg, "db", "load-user", func(ctx context.Context) (int, error) {
 *		return 23, nil
 *	})
 *	render := command.NewStep(reg, "cpu", "render", func(ctx context.Context, id int) (string, error) {
 *		return strconv.Itoa(id), nil
 *	}, command.WithFallbackValue("unknown"))
 *
 *	out, err := command.Into[int](load, render).Execute(ctx)
 */

package command
