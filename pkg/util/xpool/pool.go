package xpool

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/omeyang/xcommit/pkg/observability/xlog"
)

// Pool 是一个泛型对象池实现。
// 借出的对象通过 Recyclable 归还，池关闭后归还的对象直接销毁。
type Pool[T any] struct {
	factory func() (T, error)
	destroy func(T)
	opts    options

	mu     sync.Mutex
	idle   []T
	closed bool
}

// 编译期确保 *Pool 实现 io.Closer。
var _ io.Closer = (*Pool[int])(nil)

// New 创建对象池。
//
// 参数：
//   - factory: 池中无空闲对象时用于创建新对象，不能为 nil
//   - destroy: 对象被丢弃时调用（超出 maxIdle 或池已关闭），可以为 nil
func New[T any](factory func() (T, error), destroy func(T), opts ...Option) (*Pool[T], error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	o := options{logger: xlog.Nop(), maxIdle: 8}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.maxIdle < 0 {
		return nil, ErrInvalidMaxIdle
	}
	if o.name != "" {
		o.logger = o.logger.With(slog.String("pool", o.name))
	}
	return &Pool[T]{
		factory: factory,
		destroy: destroy,
		opts:    o,
	}, nil
}

// Get 借出一个对象：优先复用空闲对象，否则调用 factory 创建。
func (p *Pool[T]) Get() (*Recyclable[T], error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		obj := p.idle[n-1]
		var zero T
		p.idle[n-1] = zero
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return NewRecyclable(obj, p.recycle), nil
	}
	p.mu.Unlock()

	// factory 可能阻塞（建立网络连接），不持锁调用
	obj, err := p.factory()
	if err != nil {
		return nil, err
	}
	return NewRecyclable(obj, p.recycle), nil
}

// recycle 将对象放回池中，池已关闭或空闲已满时销毁。
func (p *Pool[T]) recycle(obj T) {
	p.mu.Lock()
	if !p.closed && len(p.idle) < p.opts.maxIdle {
		p.idle = append(p.idle, obj)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.safeDestroy(obj)
}

// safeDestroy 销毁对象并隔离 destroy 回调中的 panic。
func (p *Pool[T]) safeDestroy(obj T) {
	if p.destroy == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.opts.logger.Error(context.Background(), "xpool: destroy panic recovered", slog.Any("panic", r))
		}
	}()
	p.destroy(obj)
}

// Idle 返回当前空闲对象数量。
func (p *Pool[T]) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Close 关闭对象池并销毁所有空闲对象。
// 仍在外借的对象在归还时会被销毁。重复调用安全。
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, obj := range idle {
		p.safeDestroy(obj)
	}
	return nil
}
