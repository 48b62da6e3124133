package xloader

import (
	"log/slog"
	"time"
)

// RecommendedLoadTimeout 推荐的加载超时时间。
// 当使用 singleflight 时，建议设置此超时以避免 goroutine 泄漏。
const RecommendedLoadTimeout = 30 * time.Second

// LoaderOptions 定义 Loader 的配置选项。
type LoaderOptions struct {
	// EnableSingleflight 是否启用 singleflight。
	// 启用后，同一 key 的并发未命中只会触发一次回源。
	// 默认为 true。
	EnableSingleflight bool

	// LoadTimeout 单次回源加载的超时时间。
	// 默认为 RecommendedLoadTimeout (30s)，防止 singleflight goroutine 泄漏。
	//
	// 行为说明：
	//   - LoadTimeout > 0: 使用指定超时时间
	//   - LoadTimeout == 0: 禁用超时（需确保 loadFn 不会无限阻塞）
	//   - LoadTimeout < 0: 使用默认超时 (30s)
	//
	// 注意：在 singleflight 场景下，即使禁用超时，回源 context 仍会脱离
	// 首个调用者的取消链，以避免首个调用者取消影响其他等待者。
	LoadTimeout time.Duration

	// Logger 用于记录警告日志（如 loadFn panic）。
	// 默认使用 slog.Default()。
	Logger *slog.Logger
}

// LoaderOption 定义配置 Loader 的函数类型。
type LoaderOption func(*LoaderOptions)

// defaultLoaderOptions 返回默认的 Loader 配置。
func defaultLoaderOptions() *LoaderOptions {
	return &LoaderOptions{
		EnableSingleflight: true,
		LoadTimeout:        RecommendedLoadTimeout,
		Logger:             slog.Default(),
	}
}

// WithSingleflight 设置是否启用 singleflight。
func WithSingleflight(enable bool) LoaderOption {
	return func(o *LoaderOptions) {
		o.EnableSingleflight = enable
	}
}

// WithLoadTimeout 设置单次回源加载的超时时间。
func WithLoadTimeout(timeout time.Duration) LoaderOption {
	return func(o *LoaderOptions) {
		o.LoadTimeout = timeout
	}
}

// WithLogger 设置日志记录器。nil 保持默认。
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(o *LoaderOptions) {
		if logger != nil {
			o.Logger = logger
		}
	}
}
