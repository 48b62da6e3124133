package xmem

// Stats 是缓存运行指标的一次性快照。
// 计数器自缓存创建起单调递增，Clear 不会重置它们。
type Stats struct {
	// Hits 命中次数（Get 返回 ok=true）。
	Hits uint64
	// Misses 未命中次数（键不存在或已过期）。
	Misses uint64
	// Evictions 容量淘汰次数。
	Evictions uint64
	// Expirations TTL 过期移除次数（惰性发现与后台清理之和）。
	Expirations uint64
	// Entries 当前在账条目数，等价于 Len()。
	Entries int
}

// Stats 返回当前运行指标快照。
// 各字段独立读取，整体不保证瞬时一致；作为监控数据足够。
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		Entries:     int(c.live.Load()),
	}
}
