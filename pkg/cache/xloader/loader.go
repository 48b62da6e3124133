package xloader

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/omeyang/xmemcache/pkg/cache/xmem"
)

// LoadFunc 是回源加载函数。
// ctx 由 Loader 派生：受 LoadTimeout 约束，并且在 singleflight 场景下
// 已脱离首个调用者的取消链。
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Loader 实现 cache-aside 读取：先查缓存，未命中时回源并写回。
// 通过 singleflight 合并同一 key 的并发回源，防止缓存击穿。
type Loader[V any] struct {
	cache   *xmem.Cache[string, V]
	options *LoaderOptions
	group   singleflight.Group
}

// NewLoader 创建 Loader 实例。
// cache 为 nil 时返回 ErrNilCache。
func NewLoader[V any](cache *xmem.Cache[string, V], opts ...LoaderOption) (*Loader[V], error) {
	if cache == nil {
		return nil, ErrNilCache
	}

	options := defaultLoaderOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	return &Loader[V]{
		cache:   cache,
		options: options,
	}, nil
}

// Load 从缓存加载数据，未命中时调用 loadFn 回源并以 ttl 写回。
// ttl 为 0 表示写回的条目永不过期，负值返回 ErrInvalidTTL。
// ctx 为 nil 是编程错误，直接 panic。
//
// 启用 singleflight 时，同一 key 的并发未命中只触发一次 loadFn，
// 每个调用者可以各自因 ctx 取消而提前返回，不影响其他等待者。
func (l *Loader[V]) Load(ctx context.Context, key string, loadFn LoadFunc[V], ttl time.Duration) (V, error) {
	var zero V
	if ctx == nil {
		panic("xloader: nil context")
	}
	if loadFn == nil {
		return zero, ErrNilLoadFunc
	}
	if ttl < 0 {
		return zero, ErrInvalidTTL
	}

	// 1. 尝试从缓存获取
	if value, ok := l.cache.Get(key); ok {
		return value, nil
	}

	// 2. 缓存未命中，回源
	if l.options.EnableSingleflight {
		return l.loadWithSingleflight(ctx, key, loadFn, ttl)
	}

	return l.loadAndStore(ctx, key, loadFn, ttl)
}

// loadWithSingleflight 使用 singleflight 回源。
// 使用 DoChan 支持每个调用者独立的 context 取消，同时不影响其他等待者。
func (l *Loader[V]) loadWithSingleflight(ctx context.Context, key string, loadFn LoadFunc[V], ttl time.Duration) (V, error) {
	var zero V

	ch := l.group.DoChan(key, func() (any, error) {
		// 回源使用脱离调用者取消链的 ctx，避免首个调用者取消使
		// 所有等待者一起失败；超时保护在 loadAndStore 内施加。
		return l.loadAndStore(context.WithoutCancel(ctx), key, loadFn, ttl)
	})

	// 每个调用者独立等待，可以各自取消
	select {
	case <-ctx.Done():
		// 原始 ctx 取消，返回错误，但后台加载继续供其他等待者使用
		return zero, ctx.Err()
	case result := <-ch:
		if result.Err != nil {
			return zero, result.Err
		}
		value, ok := result.Val.(V)
		if !ok {
			return zero, fmt.Errorf("xloader: unexpected result type %T from singleflight", result.Val)
		}
		return value, nil
	}
}

// loadAndStore 回源加载并写回缓存。
func (l *Loader[V]) loadAndStore(ctx context.Context, key string, loadFn LoadFunc[V], ttl time.Duration) (V, error) {
	var zero V

	// 再次检查缓存（double-check）：singleflight 排队期间
	// 可能已有其他路径写入
	if value, ok := l.cache.Get(key); ok {
		return value, nil
	}

	loadCtx, cancel := applyLoadTimeout(ctx, l.options.LoadTimeout)
	defer cancel()

	value, err := l.safeLoad(loadCtx, loadFn)
	if err != nil {
		return zero, err
	}

	l.cache.SetWithTTL(key, value, ttl)
	return value, nil
}

// safeLoad 调用 loadFn 并捕获 panic，转换为 ErrLoadPanic。
// 回源函数的 panic 不应击穿调用方的请求路径。
func (l *Loader[V]) safeLoad(ctx context.Context, loadFn LoadFunc[V]) (value V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLoadPanic, r)
			if l.options.Logger != nil {
				l.options.Logger.Warn("xloader: load function panicked", "panic", r)
			}
		}
	}()
	return loadFn(ctx)
}

// applyLoadTimeout 根据 LoadTimeout 配置创建带超时的 context。
//   - timeout == 0: 禁用超时，直接返回原 ctx
//   - timeout < 0: 使用 RecommendedLoadTimeout (30s)
//   - timeout > 0: 使用指定超时时间
func applyLoadTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		return ctx, func() {}
	}
	if timeout < 0 {
		timeout = RecommendedLoadTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
