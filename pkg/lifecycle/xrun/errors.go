package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 匹配所有 *SignalError。
	ErrSignal = errors.New("received signal")

	ErrNilFunc    = errors.New("xrun: nil func")
	ErrNilService = errors.New("xrun: nil service")

	// ErrInvalidInterval 表示 Ticker 的间隔不是正数。
	ErrInvalidInterval = errors.New("xrun: interval must be positive")
	// ErrInvalidSchedule 表示 Cron 表达式无法解析。
	ErrInvalidSchedule = errors.New("xrun: invalid cron schedule")
)

// SignalError 是 RunServices 因信号退出时返回的错误。
// xcommitctl serve 把它当作正常停止。
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("%v %v", ErrSignal, e.Signal)
}

func (e *SignalError) Unwrap() error { return ErrSignal }
