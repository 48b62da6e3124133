// Package xloader 提供基于 xmem 缓存的 cache-aside 加载器。
//
// Loader 将"查缓存、未命中回源、写回缓存"固化为一次 Load 调用，
// 并通过 singleflight 合并同一 key 的并发回源，防止缓存击穿。
//
// # 核心特性
//
//   - cache-aside：命中直接返回，未命中回源并以指定 TTL 写回
//   - 防击穿：同一 key 的并发未命中只触发一次 loadFn（可关闭）
//   - 独立取消：每个调用者可各自因 ctx 取消提前返回，不影响其他等待者
//   - 超时保护：回源受 LoadTimeout 约束，防止 goroutine 泄漏
//   - panic 隔离：loadFn panic 被捕获并转换为 ErrLoadPanic
//
// # 设计决策
//
// singleflight 使用 DoChan 而非 Do：Do 会让所有等待者共享首个调用者的
// 执行路径，首个调用者取消会连累全部等待者。DoChan 配合脱离取消链的
// 回源 ctx，使取消只影响发起取消的调用者本身。
//
// # 注意事项
//
//   - loadFn 返回错误时不写缓存，也不做负缓存；如需缓存"不存在"，
//     应在值类型中表达并正常返回
//   - 禁用 LoadTimeout（设为 0）时需确保 loadFn 不会无限阻塞，
//     否则 singleflight 中后续同 key 请求会一直排队
//   - Loader 不管理 Cache 的生命周期，Close 缓存仍是调用方的责任
package xloader
