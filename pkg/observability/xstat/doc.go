// Package xstat 将 xmem 缓存的运行指标桥接到 OpenTelemetry。
//
// Collector 以 observable 方式暴露指标：数值在采集端拉取时读取
// Stats() 快照，缓存的读写路径不产生任何额外开销。
//
// # 指标
//
//   - xmemcache.hits / xmemcache.misses：命中与未命中计数（累计）
//   - xmemcache.evictions：容量淘汰计数（累计）
//   - xmemcache.expirations：TTL 过期移除计数（累计）
//   - xmemcache.entries：当前条目数（瞬时值）
//
// 所有指标附带 cache 属性区分同一进程内的多个缓存实例。
//
// # 注意事项
//
//   - Register 的 name 在同一 Collector 内必须唯一
//   - 缓存 Close 前应先 Unregister，否则采集端会继续观测到关闭后的零值
//   - 计数器是缓存创建以来的累计值，速率与命中率由后端计算
package xstat
