// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xstat: 缓存运行指标到 OpenTelemetry 的桥接
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 指标在采集端拉取时读取，不侵入缓存操作路径
package observability
