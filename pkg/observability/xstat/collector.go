package xstat

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xmemcache/pkg/cache/xmem"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xmemcache/xstat"

	metricHits        = "xmemcache.hits"
	metricMisses      = "xmemcache.misses"
	metricEvictions   = "xmemcache.evictions"
	metricExpirations = "xmemcache.expirations"
	metricEntries     = "xmemcache.entries"

	attrCacheName = "cache"
)

// Source 是指标来源：任何能给出 xmem.Stats 快照的对象。
// *xmem.Cache 天然满足该接口。
type Source interface {
	Stats() xmem.Stats
}

type config struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// Option 定义 Collector 的配置选项。
type Option func(*config)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *config) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// Collector 将任意数量缓存的 Stats 以可观测指标的形式暴露给 OpenTelemetry。
// 指标在采集端拉取时读取（observable），不在缓存操作路径上产生开销。
type Collector struct {
	meter metric.Meter

	hits        metric.Int64ObservableCounter
	misses      metric.Int64ObservableCounter
	evictions   metric.Int64ObservableCounter
	expirations metric.Int64ObservableCounter
	entries     metric.Int64ObservableGauge

	mu      sync.Mutex
	sources map[string]Source
}

// NewCollector 创建基于 OpenTelemetry 的指标采集器。
func NewCollector(opts ...Option) (*Collector, error) {
	cfg := &config{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	c := &Collector{
		meter:   meter,
		sources: make(map[string]Source),
	}

	var err error
	c.hits, err = meter.Int64ObservableCounter(
		metricHits,
		metric.WithDescription("cache hits"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xstat: create hits counter failed: %w", err)
	}

	c.misses, err = meter.Int64ObservableCounter(
		metricMisses,
		metric.WithDescription("cache misses"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xstat: create misses counter failed: %w", err)
	}

	c.evictions, err = meter.Int64ObservableCounter(
		metricEvictions,
		metric.WithDescription("entries evicted by capacity"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xstat: create evictions counter failed: %w", err)
	}

	c.expirations, err = meter.Int64ObservableCounter(
		metricExpirations,
		metric.WithDescription("entries removed by TTL expiration"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xstat: create expirations counter failed: %w", err)
	}

	c.entries, err = meter.Int64ObservableGauge(
		metricEntries,
		metric.WithDescription("entries currently cached"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xstat: create entries gauge failed: %w", err)
	}

	return c, nil
}

// Registration 代表一次缓存注册，通过 Unregister 解除。
type Registration struct {
	unregister func() error
	once       sync.Once
	err        error
}

// Unregister 解除注册并停止该缓存的指标上报。幂等。
func (r *Registration) Unregister() error {
	r.once.Do(func() {
		r.err = r.unregister()
	})
	return r.err
}

// Register 注册一个缓存，之后每次指标采集都会读取其 Stats。
// name 作为 cache 属性值区分不同缓存，同一 Collector 内必须唯一。
func (c *Collector) Register(name string, src Source) (*Registration, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if src == nil {
		return nil, ErrNilSource
	}

	c.mu.Lock()
	if _, exists := c.sources[name]; exists {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	c.sources[name] = src
	c.mu.Unlock()

	attrs := metric.WithAttributes(attribute.String(attrCacheName, name))

	reg, err := c.meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			st := src.Stats()
			o.ObserveInt64(c.hits, clampUint64(st.Hits), attrs)
			o.ObserveInt64(c.misses, clampUint64(st.Misses), attrs)
			o.ObserveInt64(c.evictions, clampUint64(st.Evictions), attrs)
			o.ObserveInt64(c.expirations, clampUint64(st.Expirations), attrs)
			o.ObserveInt64(c.entries, int64(st.Entries), attrs)
			return nil
		},
		c.hits, c.misses, c.evictions, c.expirations, c.entries,
	)
	if err != nil {
		c.mu.Lock()
		delete(c.sources, name)
		c.mu.Unlock()
		return nil, fmt.Errorf("xstat: register callback failed: %w", err)
	}

	return &Registration{
		unregister: func() error {
			c.mu.Lock()
			delete(c.sources, name)
			c.mu.Unlock()
			if err := reg.Unregister(); err != nil {
				return fmt.Errorf("xstat: unregister callback failed: %w", err)
			}
			return nil
		},
	}, nil
}

// clampUint64 将 uint64 计数收窄到 int64，防止极端计数溢出为负。
func clampUint64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
