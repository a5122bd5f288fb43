package xpool

import "errors"

var (
	// ErrNilFactory 表示 factory 参数为 nil。
	ErrNilFactory = errors.New("xpool: factory cannot be nil")

	// ErrPoolClosed 表示对象池已关闭，无法借出对象。
	ErrPoolClosed = errors.New("xpool: pool is closed")

	// ErrInvalidMaxIdle 表示最大空闲数量无效。
	ErrInvalidMaxIdle = errors.New("xpool: invalid max idle")
)
