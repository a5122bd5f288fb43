package xretry

import "errors"

var (
	// ErrNilRetryer 表示在 nil *Retryer 上调用 Do。
	ErrNilRetryer = errors.New("xretry: nil retryer")
	// ErrNilContext 表示 Do 收到 nil context。
	ErrNilContext = errors.New("xretry: nil context")
	// ErrNilFunc 表示 Do 收到 nil 函数。
	ErrNilFunc = errors.New("xretry: nil func")
)

// RetryableError 由自带重试语义的错误实现，错误链上最外层的实现者生效。
type RetryableError interface {
	error
	Retryable() bool
}

// markedError 给 err 打上可重试或永久失败的标记。
type markedError struct {
	err       error
	retryable bool
}

func (e *markedError) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.retryable:
		return "temporary error"
	default:
		return "permanent error"
	}
}

func (e *markedError) Unwrap() error { return e.err }
func (e *markedError) Retryable() bool { return e.retryable }

// NewPermanentError 把 err 标记为不可重试。Retryer 立即停止；
// xkafka.ClassifyError 把它归为 KindFatal，提交周期随之中止。
func NewPermanentError(err error) error {
	return &markedError{err: err}
}

// NewTemporaryError 把 err 标记为可重试，可覆盖内层的永久标记。
func NewTemporaryError(err error) error {
	return &markedError{err: err, retryable: true}
}

// IsRetryable 报告 err 是否值得重试。nil 不需要重试；未标记的错误视为可重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return true
}

// IsPermanent 报告 err 是否被标记为永久失败。
func IsPermanent(err error) bool {
	return err != nil && !IsRetryable(err)
}
