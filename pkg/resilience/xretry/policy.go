package xretry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy 决定失败后是否再试。
type RetryPolicy interface {
	// MaxAttempts 是包含首次在内的尝试上限，<= 0 表示不限次数。
	MaxAttempts() int
	// ShouldRetry 在第 attempt 次（从 1 开始）失败后调用。
	ShouldRetry(ctx context.Context, attempt int, err error) bool
}

// FixedRetry 最多尝试固定次数，永久错误和已结束的 ctx 立即停止。
type FixedRetry struct {
	attempts int
}

// NewFixedRetry 创建 FixedRetry，attempts 小于 1 时按 1 处理。
func NewFixedRetry(attempts int) *FixedRetry {
	return &FixedRetry{attempts: max(attempts, 1)}
}

func (p *FixedRetry) MaxAttempts() int { return p.attempts }

func (p *FixedRetry) ShouldRetry(ctx context.Context, attempt int, err error) bool {
	return ctx.Err() == nil && attempt < p.attempts && IsRetryable(err)
}

// NewNeverRetry 返回只尝试一次的策略。
func NewNeverRetry() RetryPolicy {
	return NewFixedRetry(1)
}

// BackoffPolicy 决定第 attempt 次（从 1 开始）失败后等待多久。
type BackoffPolicy interface {
	NextDelay(attempt int) time.Duration
}

// BackoffFunc 让普通函数实现 BackoffPolicy。
type BackoffFunc func(attempt int) time.Duration

func (f BackoffFunc) NextDelay(attempt int) time.Duration { return f(attempt) }

// NewNoBackoff 返回不等待的策略。
func NewNoBackoff() BackoffPolicy {
	return NewFixedBackoff(0)
}

// NewFixedBackoff 每次等待 delay，负数按 0 处理。
func NewFixedBackoff(delay time.Duration) BackoffPolicy {
	delay = max(delay, 0)
	return BackoffFunc(func(int) time.Duration { return delay })
}

// ExponentialBackoff 的第 n 次延迟为 Initial * Multiplier^(n-1)，
// 再乘以 [1-Jitter, 1+Jitter] 内的随机因子，最后截断到 Max。
type ExponentialBackoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// NewExponentialBackoff 返回 100ms 起步、翻倍、上限 30s、抖动 10% 的退避。
func NewExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		Initial:    100 * time.Millisecond,
		Max:        30 * time.Second,
		Multiplier: 2,
		Jitter:     0.1,
	}
}

// NextDelay 对非法字段做归一化：Multiplier < 1 按 1，Jitter 截断到 [0, 1]，
// Max 小于 Initial 时以 Initial 为上限。
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	ceiling := max(b.Max, b.Initial)
	delay := float64(b.Initial) * math.Pow(max(b.Multiplier, 1), float64(max(attempt, 1)-1))
	if jitter := min(max(b.Jitter, 0), 1); jitter > 0 {
		delay *= 1 + (rand.Float64()*2-1)*jitter
	}
	// 溢出后 delay 可能是 +Inf 或 NaN
	if math.IsNaN(delay) || delay >= float64(ceiling) {
		return ceiling
	}
	return time.Duration(max(delay, 0))
}
