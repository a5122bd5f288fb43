package xretry

import (
	"context"
	"math"
	"time"

	retry "github.com/avast/retry-go/v5"
)

const defaultAttempts = 3

// Retryer 组合 RetryPolicy 与 BackoffPolicy，由 avast/retry-go/v5 驱动执行。
// 零值可用，等价于 NewRetryer()。
type Retryer struct {
	policy  RetryPolicy
	backoff BackoffPolicy
	onRetry func(attempt int, err error)
}

// RetryerOption 配置 Retryer。
type RetryerOption func(*Retryer)

// WithRetryPolicy 替换重试策略，默认 NewFixedRetry(3)。
func WithRetryPolicy(p RetryPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.policy = p
		}
	}
}

// WithBackoffPolicy 替换退避策略，默认 NewExponentialBackoff()。
func WithBackoffPolicy(p BackoffPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.backoff = p
		}
	}
}

// WithOnRetry 在每次失败且即将重试时回调，attempt 从 1 开始。
func WithOnRetry(f func(attempt int, err error)) RetryerOption {
	return func(r *Retryer) {
		if f != nil {
			r.onRetry = f
		}
	}
}

func NewRetryer(opts ...RetryerOption) *Retryer {
	r := &Retryer{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// MaxAttempts 返回单次 Do 的尝试上限，0 表示不限次数。
func (r *Retryer) MaxAttempts() int {
	if r == nil {
		return 0
	}
	return r.retryPolicy().MaxAttempts()
}

// Do 执行 fn 直到成功、策略拒绝重试、达到上限或 ctx 结束，
// 返回最后一次尝试的错误。被 NewPermanentError 标记的错误立即返回。
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	switch {
	case r == nil:
		return ErrNilRetryer
	case ctx == nil:
		return ErrNilContext
	case fn == nil:
		return ErrNilFunc
	}
	return retry.New(r.options(ctx)...).Do(func() error { return fn(ctx) })
}

func (r *Retryer) retryPolicy() RetryPolicy {
	if r.policy == nil {
		return NewFixedRetry(defaultAttempts)
	}
	return r.policy
}

func (r *Retryer) backoffPolicy() BackoffPolicy {
	if r.backoff == nil {
		return NewExponentialBackoff()
	}
	return r.backoff
}

// options 为每次 Do 构造独立的 retry-go 选项，失败计数不跨调用。
func (r *Retryer) options(ctx context.Context) []retry.Option {
	policy, backoff := r.retryPolicy(), r.backoffPolicy()

	attempts := retry.UntilSucceeded()
	if n := policy.MaxAttempts(); n > 0 {
		attempts = retry.Attempts(uint(n))
	}

	// Attempts 是硬上限，ShouldRetry 只能提前结束
	failures := 0
	opts := []retry.Option{
		retry.Context(ctx),
		attempts,
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			failures++
			return retry.IsRecoverable(err) && policy.ShouldRetry(ctx, failures, err)
		}),
		// DelayType 的 n 从 1 开始
		retry.DelayType(func(n uint, _ error, _ retry.DelayContext) time.Duration {
			return backoff.NextDelay(toInt(n))
		}),
	}
	if r.onRetry != nil {
		// OnRetry 的 n 从 0 开始
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			r.onRetry(toInt(n)+1, err)
		}))
	}
	return opts
}

func toInt(n uint) int {
	return int(min(n, uint(math.MaxInt)))
}
