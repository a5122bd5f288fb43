package xcommitstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"

	"github.com/omeyang/xcommit/pkg/mq/xkafkasink"
)

// lockHandle 表示一次成功的锁获取。
type lockHandle struct {
	mutex *redsync.Mutex
	key   string
}

// Lock 获取 sink 的周期锁（非阻塞），ttl 到期后自动释放。
// 锁被其他实例持有时返回 ErrLockFailed。
func (s *Store) Lock(ctx context.Context, ttl time.Duration) (xkafkasink.Unlocker, error) {
	if ttl <= 0 {
		return nil, ErrInvalidLockTTL
	}
	mutex := s.rs.NewMutex(s.lockKey,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
		// 锁值包含实例标识便于排查
		redsync.WithGenValueFunc(func() (string, error) {
			return s.opts.identity + ":" + uuid.NewString(), nil
		}),
	)

	if err := mutex.TryLockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var taken *redsync.ErrTaken
		if errors.As(err, &taken) || errors.Is(err, redsync.ErrFailed) {
			return nil, fmt.Errorf("%w: %w", ErrLockFailed, err)
		}
		return nil, fmt.Errorf("xcommitstore: lock %s: %w", s.lockKey, err)
	}
	return &lockHandle{mutex: mutex, key: s.lockKey}, nil
}

// Unlock 释放锁。锁已过期或被其他实例持有时返回 ErrLockNotHeld。
func (h *lockHandle) Unlock(ctx context.Context) error {
	ok, err := h.mutex.UnlockContext(ctx)
	if err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrLockAlreadyExpired) || errors.As(err, &taken) {
			return ErrLockNotHeld
		}
		return fmt.Errorf("xcommitstore: unlock %s: %w", h.key, err)
	}
	if !ok {
		return ErrLockNotHeld
	}
	return nil
}
