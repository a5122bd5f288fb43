package xbreaker

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
)

type (
	// Counts 是 gobreaker 的请求计数。
	Counts = gobreaker.Counts
	// State 是熔断器状态。
	State = gobreaker.State
)

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// Breaker 用 gobreaker 保护一段操作，每次 Do 计为一个请求。
type Breaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

// BreakerOption 修改底层 gobreaker.Settings。
type BreakerOption func(*gobreaker.Settings)

// WithTripPolicy 设置 Closed 转 Open 的条件，默认连续失败 5 次。
func WithTripPolicy(p TripPolicy) BreakerOption {
	return func(s *gobreaker.Settings) {
		if p != nil {
			s.ReadyToTrip = p.ReadyToTrip
		}
	}
}

// WithSuccessPolicy 设置哪些错误仍算作成功，默认只有 nil。
func WithSuccessPolicy(p SuccessPolicy) BreakerOption {
	return func(s *gobreaker.Settings) {
		if p != nil {
			s.IsSuccessful = p.IsSuccessful
		}
	}
}

// WithTimeout 设置 Open 持续多久后进入 HalfOpen，默认 60s。
func WithTimeout(d time.Duration) BreakerOption {
	return func(s *gobreaker.Settings) {
		if d > 0 {
			s.Timeout = d
		}
	}
}

// WithInterval 设置 Closed 状态下计数清零的周期，0 表示不清零。
func WithInterval(d time.Duration) BreakerOption {
	return func(s *gobreaker.Settings) {
		if d >= 0 {
			s.Interval = d
		}
	}
}

// WithMaxRequests 设置 HalfOpen 状态下放行的请求数，默认 1。
func WithMaxRequests(n uint32) BreakerOption {
	return func(s *gobreaker.Settings) {
		if n > 0 {
			s.MaxRequests = n
		}
	}
}

// WithOnStateChange 在状态切换时回调，回调在 gobreaker 的锁内执行，不要阻塞。
func WithOnStateChange(f func(name string, from, to State)) BreakerOption {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = f
	}
}

// NewBreaker 创建名为 name 的熔断器，name 出现在 BreakerError 中。
func NewBreaker(name string, opts ...BreakerOption) *Breaker {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: NewConsecutiveFailures(5).ReadyToTrip,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&st)
		}
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker[struct{}](st)}
}

// Do 在熔断器允许时执行 fn。
//
// ctx 已结束时直接返回 ctx.Err()，不计入统计；熔断打开或半开名额用尽时
// fn 不执行，返回 *BreakerError。
func (b *Breaker) Do(ctx context.Context, fn func() error) error {
	switch {
	case ctx == nil:
		return ErrNilContext
	case fn == nil:
		return ErrNilFunc
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return b.wrap(err)
}

func (b *Breaker) State() State { return b.cb.State() }
func (b *Breaker) Name() string { return b.cb.Name() }
func (b *Breaker) Counts() Counts { return b.cb.Counts() }

// TripPolicy 决定 Closed 何时转为 Open。
type TripPolicy interface {
	ReadyToTrip(counts Counts) bool
}

// ConsecutiveFailures 在连续失败达到阈值时熔断。
type ConsecutiveFailures uint32

// NewConsecutiveFailures 创建阈值为 threshold 的策略，0 按 1 处理。
func NewConsecutiveFailures(threshold uint32) ConsecutiveFailures {
	return ConsecutiveFailures(max(threshold, 1))
}

func (n ConsecutiveFailures) ReadyToTrip(counts Counts) bool {
	return counts.ConsecutiveFailures >= uint32(n)
}

// SuccessPolicy 决定一次调用的错误是否算作成功。
type SuccessPolicy interface {
	IsSuccessful(err error) bool
}

// SuccessFunc 让普通函数实现 SuccessPolicy。
type SuccessFunc func(err error) bool

func (f SuccessFunc) IsSuccessful(err error) bool { return f(err) }
