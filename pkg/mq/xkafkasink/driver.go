package xkafkasink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xcommit/pkg/context/xctx"
	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/observability/xmetrics"
	"github.com/omeyang/xcommit/pkg/resilience/xbreaker"
	"github.com/omeyang/xcommit/pkg/resilience/xretry"
)

// =============================================================================
// 协作接口
// =============================================================================

// CommitCloser 是 Driver 驱动的提交协调者，*Committer 实现该接口。
type CommitCloser interface {
	CommitResult(ctx context.Context, batch []*Committable) (Result, error)
	Close() error
}

// Store 持久化待提交的 committable（调用方持有的重试集合）。
type Store interface {
	// Add 记录新的待提交 committable。
	Add(ctx context.Context, committables ...*Committable) error
	// Pending 返回全部待提交 committable，不带活句柄。
	Pending(ctx context.Context) ([]*Committable, error)
	// Remove 删除已解决（提交或放弃）的 committable。
	// 只删除身份完全一致的记录，周期内新加入的同名事务代次不受影响。
	Remove(ctx context.Context, committables ...*Committable) error
}

// Locker 由支持互斥的 Store 实现，保证同一 sink 同一时刻只有一个 Driver 在提交。
type Locker interface {
	Lock(ctx context.Context, ttl time.Duration) (Unlocker, error)
}

// Unlocker 释放 Locker 获得的锁。
type Unlocker interface {
	Unlock(ctx context.Context) error
}

// Report 是一次提交周期的汇总。
type Report struct {
	CheckpointID int64  `json:"checkpoint_id"`
	CycleID      string `json:"cycle_id"`
	// Pending 周期开始时从 Store 读取的数量。
	Pending   int `json:"pending"`
	Committed int `json:"committed"`
	Abandoned int `json:"abandoned"`
	// Retried 周期结束时仍需重试的数量。
	Retried int `json:"retried"`
	// Attempts 周期内调用 committer 的次数。
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
}

// errPendingRetry 表示本次尝试后仍有待重试的 committable，交给 Retryer 决定是否再试。
var errPendingRetry = errors.New("xkafkasink: committables pending retry")

// =============================================================================
// Driver
// =============================================================================

// Driver 按 checkpoint 驱动提交周期：从 Store 读取待提交集合，交给 committer，
// 把已解决的记录从 Store 删除，剩余的留待下一周期。
//
// 周期之间由互斥锁串行化。通过 Add 加入的活句柄保存在内存中，
// 从 Store 读回的同一事务代次会换成携带活句柄的 committable。
type Driver struct {
	committer CommitCloser
	store     Store
	opts      *driverOptions

	checkpoint atomic.Int64

	mu     sync.Mutex
	live   map[string]*Committable
	closed bool
}

// NewDriver 创建 Driver。
func NewDriver(committer CommitCloser, store Store, opts ...DriverOption) (*Driver, error) {
	if committer == nil {
		return nil, ErrNilCommitter
	}
	if store == nil {
		return nil, ErrNilStore
	}
	o := defaultDriverOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.logger = o.logger.With(xlog.Component(componentName), slog.String(xctx.KeySink, o.sink))
	if o.breaker == nil {
		o.breaker = xbreaker.NewBreaker(componentName+":"+o.sink,
			xbreaker.WithTripPolicy(xbreaker.NewConsecutiveFailures(3)),
			xbreaker.WithOnStateChange(breakerStateLogger(o.logger)),
		)
	}

	return &Driver{
		committer: committer,
		store:     store,
		opts:      o,
		live:      make(map[string]*Committable),
	}, nil
}

// Add 把预提交完成的 committable 写入 Store。
// 携带活句柄的 committable 同时登记在内存中，提交时优先使用活句柄。
func (d *Driver) Add(ctx context.Context, committables ...*Committable) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	cs := compact(committables)
	if len(cs) == 0 {
		return nil
	}
	if err := d.store.Add(ctx, cs...); err != nil {
		return fmt.Errorf("xkafkasink: add committables: %w", err)
	}
	for _, c := range cs {
		d.supersede(ctx, c)
		if c.handle() == liveHandle {
			d.live[c.key()] = c
		}
	}
	return nil
}

// supersede 丢弃同一 transactional.id 下已被 c 覆盖的旧代次活句柄。
// Store 中的旧记录已被覆盖，旧代次不会再被解决，句柄在这里归还。
func (d *Driver) supersede(ctx context.Context, c *Committable) {
	for key, old := range d.live {
		if old.transactionalID != c.transactionalID || key == c.key() {
			continue
		}
		delete(d.live, key)
		d.opts.logger.Warn(ctx, "dropping live handle of a superseded transaction generation",
			identityAttrs(old,
				slog.Int64("new_producer_id", c.producerID),
				slog.Int("new_epoch", int(c.epoch)),
			)...)
		if old.producer != c.producer {
			old.release()
		}
	}
}

// RunCycle 执行一次提交周期。
//
// 返回错误的情况：Store 读写失败、committer 返回周期级错误、熔断器打开。
// 出错时已解决的 committable 仍会从 Store 删除。
func (d *Driver) RunCycle(ctx context.Context, checkpointID int64) (report Report, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return report, ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if ctx, err = d.cycleContext(ctx, checkpointID); err != nil {
		return report, err
	}
	report.CheckpointID = checkpointID
	report.CycleID = xctx.CycleID(ctx)

	start := time.Now()
	ctx, span := xmetrics.Start(ctx, d.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "cycle",
		Kind:      xmetrics.KindInternal,
		Attrs: []xmetrics.Attr{
			xmetrics.Int64(xctx.KeyCheckpointID, checkpointID),
			xmetrics.String(xctx.KeySink, d.opts.sink),
		},
	})

	err = d.opts.breaker.Do(ctx, func() error {
		return d.runCycle(ctx, &report)
	})
	report.Duration = time.Since(start)

	span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{
		xmetrics.Int("pending", report.Pending),
		xmetrics.Int("committed", report.Committed),
		xmetrics.Int("abandoned", report.Abandoned),
		xmetrics.Int("retried", report.Retried),
		xmetrics.Int("attempts", report.Attempts),
	}})
	d.logReport(ctx, report, err)
	return report, err
}

// Tick 以自增的 checkpoint 编号执行一次周期，供定时调度使用。
// 周期错误只记录日志，Driver 已关闭时返回 ErrClosed 以停止调度。
func (d *Driver) Tick(ctx context.Context) error {
	_, err := d.RunCycle(ctx, d.checkpoint.Add(1))
	if errors.Is(err, ErrClosed) {
		return err
	}
	return nil
}

// Close 关闭 committer。重复调用返回 nil。
// 内存中登记的活句柄归属于各自的池，Driver 不负责归还。
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.live = nil
	return d.committer.Close()
}

func (d *Driver) cycleContext(ctx context.Context, checkpointID int64) (context.Context, error) {
	ctx, err := xctx.WithCheckpointID(ctx, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("xkafkasink: checkpoint %d: %w", checkpointID, err)
	}
	if ctx, err = xctx.WithSink(ctx, d.opts.sink); err != nil {
		return nil, err
	}
	return xctx.EnsureCycleID(ctx)
}

func (d *Driver) runCycle(ctx context.Context, report *Report) (err error) {
	if locker, ok := d.store.(Locker); ok && d.opts.lockTTL > 0 {
		unlocker, lockErr := locker.Lock(ctx, d.opts.lockTTL)
		if lockErr != nil {
			return fmt.Errorf("xkafkasink: acquire store lock: %w", lockErr)
		}
		defer func() {
			if unlockErr := unlocker.Unlock(context.WithoutCancel(ctx)); unlockErr != nil {
				d.opts.logger.Warn(ctx, "release store lock failed", xlog.Err(unlockErr))
			}
		}()
	}

	pending, err := d.store.Pending(ctx)
	if err != nil {
		return fmt.Errorf("xkafkasink: load pending committables: %w", err)
	}
	report.Pending = len(pending)
	if len(pending) == 0 {
		return nil
	}

	current := d.attachLive(pending)
	var resolved []*Committable
	var fatal error
	retryErr := d.opts.retryer.Do(ctx, func(ctx context.Context) error {
		report.Attempts++
		res, commitErr := d.committer.CommitResult(ctx, current)
		report.Committed += len(res.Committed)
		report.Abandoned += len(res.Abandoned)
		resolved = append(resolved, res.Committed...)
		resolved = append(resolved, res.Abandoned...)
		current = res.Retry

		if commitErr != nil {
			fatal = commitErr
			return xretry.NewPermanentError(commitErr)
		}
		if len(current) > 0 {
			return errPendingRetry
		}
		return nil
	})
	report.Retried = len(current)

	if len(resolved) > 0 {
		// 已提交的事务必须从 Store 删除，即使周期被取消
		if removeErr := d.store.Remove(context.WithoutCancel(ctx), resolved...); removeErr != nil {
			return errors.Join(fatal, fmt.Errorf("xkafkasink: remove resolved committables: %w", removeErr))
		}
		d.forget(resolved)
	}
	if fatal != nil {
		return fatal
	}
	if retryErr != nil && !errors.Is(retryErr, errPendingRetry) {
		return retryErr
	}
	return nil
}

// attachLive 把 Store 中读出的记录替换为内存中携带活句柄的同一事务代次。
func (d *Driver) attachLive(pending []*Committable) []*Committable {
	if len(d.live) == 0 {
		return pending
	}
	out := make([]*Committable, len(pending))
	for i, c := range pending {
		if live, ok := d.live[c.key()]; ok {
			out[i] = live
			continue
		}
		out[i] = c
	}
	return out
}

func (d *Driver) forget(resolved []*Committable) {
	for _, c := range resolved {
		delete(d.live, c.key())
	}
}

func (d *Driver) logReport(ctx context.Context, report Report, err error) {
	attrs := []slog.Attr{
		slog.Int("pending", report.Pending),
		slog.Int("committed", report.Committed),
		slog.Int("abandoned", report.Abandoned),
		slog.Int("retried", report.Retried),
		slog.Int("attempts", report.Attempts),
		xlog.Duration(report.Duration),
	}
	switch {
	case err == nil && report.Pending == 0:
		d.opts.logger.Debug(ctx, "commit cycle finished, nothing pending", attrs...)
	case err == nil:
		d.opts.logger.Info(ctx, "commit cycle finished", attrs...)
	case xbreaker.IsOpen(err) || xbreaker.IsTooManyRequests(err):
		d.opts.logger.Warn(ctx, "commit cycle skipped, circuit breaker open", xlog.Err(err))
	default:
		d.opts.logger.Error(ctx, "commit cycle failed", append(attrs, xlog.Err(err))...)
	}
}

// =============================================================================
// 选项
// =============================================================================

// DriverOption 定义 Driver 的配置选项函数类型。
type DriverOption func(*driverOptions)

type driverOptions struct {
	logger   xlog.Logger
	observer xmetrics.Observer
	sink     string
	retryer  *xretry.Retryer
	breaker  *xbreaker.Breaker
	lockTTL  time.Duration
}

func defaultDriverOptions() *driverOptions {
	return &driverOptions{
		logger:   xlog.Nop(),
		observer: xmetrics.NoopObserver{},
		sink:     "default",
		retryer: xretry.NewRetryer(
			xretry.WithRetryPolicy(xretry.NewNeverRetry()),
			xretry.WithBackoffPolicy(xretry.NewNoBackoff()),
		),
	}
}

// WithDriverLogger 设置日志记录器。nil 被忽略。
func WithDriverLogger(logger xlog.Logger) DriverOption {
	return func(o *driverOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDriverObserver 设置统一观测接口。nil 被忽略。
func WithDriverObserver(observer xmetrics.Observer) DriverOption {
	return func(o *driverOptions) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithSink 设置 sink 名称，用于日志、追踪和默认熔断器名称。默认 "default"。
func WithSink(sink string) DriverOption {
	return func(o *driverOptions) {
		if sink != "" {
			o.sink = sink
		}
	}
}

// WithRetryer 设置周期内重新提交重试集合的策略。
// 默认只尝试一次，剩余的重试集合留待下一周期。
func WithRetryer(r *xretry.Retryer) DriverOption {
	return func(o *driverOptions) {
		if r != nil {
			o.retryer = r
		}
	}
}

// breakerStateLogger 记录提交周期熔断器的状态切换。
func breakerStateLogger(logger xlog.Logger) func(name string, from, to xbreaker.State) {
	return func(name string, from, to xbreaker.State) {
		logger.Warn(context.Background(), "commit cycle breaker state changed",
			slog.String("breaker", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	}
}

// WithBreaker 设置熔断器。默认连续 3 个周期失败后打开。
func WithBreaker(b *xbreaker.Breaker) DriverOption {
	return func(o *driverOptions) {
		if b != nil {
			o.breaker = b
		}
	}
}

// WithLockTTL 设置周期锁的租期，Store 实现 Locker 时生效。默认不加锁。
func WithLockTTL(ttl time.Duration) DriverOption {
	return func(o *driverOptions) {
		if ttl > 0 {
			o.lockTTL = ttl
		}
	}
}
