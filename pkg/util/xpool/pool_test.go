package xpool

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xcommit/pkg/observability/xlog"
)

type conn struct {
	id int
}

func newCounterPool(t *testing.T, destroyed *[]int, opts ...Option) *Pool[*conn] {
	t.Helper()
	var next atomic.Int32
	var mu sync.Mutex
	p, err := New(func() (*conn, error) {
		return &conn{id: int(next.Add(1))}, nil
	}, func(c *conn) {
		mu.Lock()
		defer mu.Unlock()
		*destroyed = append(*destroyed, c.id)
	}, opts...)
	require.NoError(t, err)
	return p
}

func TestNew_NilFactory(t *testing.T) {
	p, err := New[int](nil, nil)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrNilFactory)
}

func TestNew_InvalidMaxIdle(t *testing.T) {
	p, err := New(func() (int, error) { return 0, nil }, nil, WithMaxIdle(-1))
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrInvalidMaxIdle)
}

func TestPool_GetReusesRecycled(t *testing.T) {
	var destroyed []int
	p := newCounterPool(t, &destroyed)
	defer p.Close()

	r1, err := p.Get()
	require.NoError(t, err)
	first := r1.Object()
	require.NoError(t, r1.Close())
	assert.Equal(t, 1, p.Idle())

	r2, err := p.Get()
	require.NoError(t, err)
	assert.Same(t, first, r2.Object())
	assert.Equal(t, 0, p.Idle())
}

func TestRecyclable_CloseOnlyOnce(t *testing.T) {
	var calls atomic.Int32
	r := NewRecyclable("producer", func(string) { calls.Add(1) })

	assert.False(t, r.IsRecycled())
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.True(t, r.IsRecycled())
	assert.Equal(t, int32(1), calls.Load())
}

func TestRecyclable_ConcurrentClose(t *testing.T) {
	var calls atomic.Int32
	r := NewRecyclable(1, func(int) { calls.Add(1) })

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestRecyclable_NilRecycler(t *testing.T) {
	r := NewRecyclable(7, nil)
	assert.NoError(t, r.Close())
	assert.True(t, r.IsRecycled())
	assert.Equal(t, 7, r.Object())
}

func TestPool_MaxIdleDestroysOverflow(t *testing.T) {
	var destroyed []int
	p := newCounterPool(t, &destroyed, WithMaxIdle(1))
	defer p.Close()

	r1, err := p.Get()
	require.NoError(t, err)
	r2, err := p.Get()
	require.NoError(t, err)

	require.NoError(t, r1.Close())
	require.NoError(t, r2.Close())

	assert.Equal(t, 1, p.Idle())
	assert.Equal(t, []int{r2.Object().id}, destroyed)
}

func TestPool_CloseDestroysIdleAndLateReturns(t *testing.T) {
	var destroyed []int
	p := newCounterPool(t, &destroyed)

	idle, err := p.Get()
	require.NoError(t, err)
	out, err := p.Get()
	require.NoError(t, err)
	require.NoError(t, idle.Close())

	require.NoError(t, p.Close())
	assert.Equal(t, []int{idle.Object().id}, destroyed)

	require.NoError(t, out.Close())
	assert.Equal(t, []int{idle.Object().id, out.Object().id}, destroyed)

	_, err = p.Get()
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.NoError(t, p.Close())
}

func TestPool_FactoryError(t *testing.T) {
	boom := errors.New("dial failed")
	p, err := New(func() (int, error) { return 0, boom }, nil)
	require.NoError(t, err)

	r, err := p.Get()
	assert.Nil(t, r)
	assert.ErrorIs(t, err, boom)
}

func TestPool_DestroyPanicIsolated(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).SetFormat("json").Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	p, err := New(func() (int, error) { return 1, nil }, func(int) { panic("boom") },
		WithMaxIdle(0), WithName("txn"), WithLogger(logger), WithLogger(nil))
	require.NoError(t, err)

	r, err := p.Get()
	require.NoError(t, err)
	assert.NotPanics(t, func() { _ = r.Close() })
	assert.Contains(t, buf.String(), `"msg":"xpool: destroy panic recovered"`)
	assert.Contains(t, buf.String(), `"pool":"txn"`)
	assert.Contains(t, buf.String(), `"panic":"boom"`)
}
