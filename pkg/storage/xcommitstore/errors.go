package xcommitstore

import "errors"

var (
	// ErrNilClient 表示传入的 Redis 客户端为 nil。
	ErrNilClient = errors.New("xcommitstore: nil client")

	// ErrEmptySink 表示 sink 名称为空。
	ErrEmptySink = errors.New("xcommitstore: empty sink name")

	// ErrLockFailed 表示周期锁被其他实例持有。
	ErrLockFailed = errors.New("xcommitstore: failed to acquire lock")

	// ErrLockNotHeld 表示释放时锁已过期或被其他实例持有。
	ErrLockNotHeld = errors.New("xcommitstore: lock expired or stolen")

	// ErrInvalidLockTTL 表示锁的 TTL 无效。
	ErrInvalidLockTTL = errors.New("xcommitstore: lock TTL must be positive")
)
