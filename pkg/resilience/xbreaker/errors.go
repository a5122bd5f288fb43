package xbreaker

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
)

var (
	// ErrNilContext 表示 Do 收到 nil context。
	ErrNilContext = errors.New("xbreaker: context cannot be nil")
	// ErrNilFunc 表示 Do 收到 nil 函数。
	ErrNilFunc = errors.New("xbreaker: function cannot be nil")

	// ErrOpenState 是熔断打开时 gobreaker 返回的错误。
	ErrOpenState = gobreaker.ErrOpenState
	// ErrTooManyRequests 是半开名额用尽时 gobreaker 返回的错误。
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

// BreakerError 表示请求被熔断器拒绝，fn 没有执行。
// Retryable 为 false，xretry 遇到它立即停止。
type BreakerError struct {
	Err   error
	Name  string
	State State
}

func (e *BreakerError) Error() string {
	if e.Name == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("breaker %s: %v", e.Name, e.Err)
}

func (e *BreakerError) Unwrap() error { return e.Err }
func (e *BreakerError) Retryable() bool { return false }

// wrap 只包装 gobreaker 直接返回的拒绝错误；fn 自己的错误原样返回，
// 即使其中已经嵌套了别的熔断器的 BreakerError。
func (b *Breaker) wrap(err error) error {
	var state State
	switch err {
	case gobreaker.ErrOpenState:
		state = StateOpen
	case gobreaker.ErrTooManyRequests:
		state = StateHalfOpen
	default:
		return err
	}
	return &BreakerError{Err: err, Name: b.Name(), State: state}
}

// IsOpen 报告 err 是否因熔断打开而被拒绝。
func IsOpen(err error) bool { return errors.Is(err, ErrOpenState) }

// IsTooManyRequests 报告 err 是否因半开名额用尽而被拒绝。
func IsTooManyRequests(err error) bool { return errors.Is(err, ErrTooManyRequests) }

// IsBreakerError 报告 err 是否来自熔断器拒绝。
func IsBreakerError(err error) bool { return IsOpen(err) || IsTooManyRequests(err) }
