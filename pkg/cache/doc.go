// Package cache 提供进程内缓存相关的子包。
//
// 子包列表：
//   - xmem: 有界、并发安全、支持 TTL 与多种淘汰策略的内存缓存核心
//   - xloader: 基于 xmem 的 cache-aside 加载器，singleflight 防击穿
//
// 设计原则：
//   - 严格容量上界：任何时刻在账条目数不超过配置的最大值
//   - 读多写少友好：分片存储，无关 key 的纯读互不阻塞
//   - 组合优于内聚：回源、指标上报等增值能力放在独立子包
package cache
