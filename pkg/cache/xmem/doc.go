// Package xmem 提供有界、并发安全、支持 TTL 与多种淘汰策略的内存缓存。
//
// xmem 是进程内缓存核心：分片哈希表负责存储，全局账本负责容量与
// 淘汰顺序。适合作为本地缓存层（L1）承载高并发读写。
//
// # 核心特性
//
//   - 泛型支持：支持任意 comparable 的键类型和任意值类型
//   - 严格容量上界：任何时刻在账条目数不超过 MaxEntries
//   - 三种淘汰策略：LRU（默认）、LFU、Hybrid（频次×新近度近似）
//   - TTL 过期：默认 TTL + SetWithTTL 逐条覆盖，惰性过期 + 可选后台清理
//   - 淘汰回调：容量淘汰与 TTL 过期触发 OnEvict，附带移除原因
//   - 运行指标：Stats() 提供命中/未命中/淘汰/过期计数快照
//
// # 配置选项
//
// Config 结构体提供必需的配置：
//   - MaxEntries：缓存最大条目数，必须 > 0 且 ≤ 16,777,216
//   - DefaultTTL：默认过期时间，0 表示永不过期
//   - Policy：淘汰策略，默认 PolicyLRU
//
// 可选配置通过 Option 函数提供：
//   - WithShardCount：存储分片数（2 的幂，默认 32）
//   - WithSweepInterval：启用后台过期清理
//   - WithOnEvict：条目被移除时的回调
//   - WithKeyHash：自定义 key 哈希函数
//
// # 淘汰策略
//
//   - PolicyLRU：淘汰最久未访问的条目
//   - PolicyLFU：淘汰访问频次最低的条目，频次相同时淘汰较旧者
//   - PolicyHybrid：在最旧的若干条目中按 count-min 草图估计频次，
//     淘汰估计频次最低者；长期热点不会因一次冷却就被冲掉
//
// 访问记录规则：Get 和覆盖写记访问；Peek、Contains、Keys 不记。
//
// # 并发模型
//
// 存储按 key 哈希分片，每个分片独立 RWMutex，无关 key 的纯读互不阻塞。
// 容量与淘汰顺序由单一策略互斥锁保护的全局账本维护，簿记临界区很短。
// 写入路径在分片锁内完成映射发布与账本入账，经映射可见的存活条目
// 一定已在账上。锁序固定为分片锁 → 策略锁，反向嵌套不存在。
//
// # 性能特性
//
//   - Get/Set/Delete 均摊 O(1)（Hybrid 的受害者选择为 O(sample)）
//   - Keys() 会分配新切片，复杂度 O(n)
//   - Get 需要在策略锁内更新访问顺序，极端读热点下策略锁是瓶颈
//
// # 已知限制
//
//   - 不支持自定义时钟：TTL 使用系统时间，无法注入 mock 时钟
//   - TTL 惰性清理语义：Len/Keys/Stats.Entries 可能包含已过期但尚未
//     被访问或后台清理移除的条目；Get/Peek/Contains 一定过滤
//   - 容量按条目数计算，不感知值的内存大小
//   - Hybrid 的频次是 count-min 估计值，哈希冲突会高估
//   - Close 后行为：Close 后所有读操作返回零值/false，写操作静默忽略
//
// # 注意事项
//
//   - TTL 是条目级别的，从 Set 时刻开始计算
//   - Set 覆盖已有 key 时会刷新 TTL 和访问顺序
//   - Get 不会刷新 TTL（与某些缓存库的行为不同）
//   - Delete/Clear/Close 是调用方主动移除，不触发 OnEvict 回调
//   - 严禁在 OnEvict 回调中调用 Cache 自身方法，应避免耗时操作
//   - 启用 WithSweepInterval 后必须调用 Close() 释放清理 goroutine
package xmem
