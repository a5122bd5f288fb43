package xpool

import "sync/atomic"

// Recyclable 表示从池中借出的对象。
// Close 将对象交还给 recycler，多次调用只生效一次。
//
// 零值不可用，请使用 NewRecyclable 或 Pool.Get 创建。
type Recyclable[T any] struct {
	obj      T
	recycler func(T)
	recycled atomic.Bool
}

// NewRecyclable 创建一个 Recyclable。recycler 可以为 nil，此时 Close 只标记状态。
func NewRecyclable[T any](obj T, recycler func(T)) *Recyclable[T] {
	return &Recyclable[T]{obj: obj, recycler: recycler}
}

// Object 返回被借出的对象。归还之后仍可读取，但调用方不应再使用它。
func (r *Recyclable[T]) Object() T {
	return r.obj
}

// Close 归还对象。重复调用是安全的，只有第一次调用会触发 recycler。
// 总是返回 nil，以满足 io.Closer。
func (r *Recyclable[T]) Close() error {
	if !r.recycled.CompareAndSwap(false, true) {
		return nil
	}
	if r.recycler != nil {
		r.recycler(r.obj)
	}
	return nil
}

// IsRecycled 报告对象是否已归还。
func (r *Recyclable[T]) IsRecycled() bool {
	return r.recycled.Load()
}
