/*
 * executor 包 - 执行组注册表
 *
 * 概述：
 *   每个执行组（Group）是一个按 key 命名的固定大小工作协程池。
 *   调用方为每个下游依赖选择一个 key，不同 key 的命令互不占用对方的工作协程，
 *   从而实现舱壁隔离。
 *
 * 核心组件：
 *   - Registry: 显式的上下文对象，持有 key → Group 映射，由根命令的所有者负责关闭
 *   - Group: 工作协程池，创建后大小不变
 *   - Worker: 工作协程标识，通过 context 传递给正在执行的任务
 *   - Config: 通过环境变量加载的池大小配置
 *
 * 生命周期：
 *   1. NewRegistry 创建注册表
 *   2. Group(key) 惰性创建执行组，同一个 key 在注册表生命周期内始终返回同一实例
 *   3. Close 停止接收新任务，排队未开始的任务以 ErrGroupClosed 拒绝，运行中的任务自然结束
 */

package executor
