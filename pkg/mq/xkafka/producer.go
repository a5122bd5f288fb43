package xkafka

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/propagation"

	"github.com/omeyang/xcommit/internal/mqcore"
	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/observability/xmetrics"
)

// =============================================================================
// TxnProducer 接口
// =============================================================================

// TxnProducer 定义绑定了 transactional.id 的 Kafka 事务 producer。
// 通过 Producer() 方法暴露底层 *kafka.Producer，可使用所有原生 API。
type TxnProducer interface {
	// Producer 返回底层的 *kafka.Producer。
	Producer() *kafka.Producer

	// TransactionalID 返回绑定的 transactional.id。
	TransactionalID() string

	// BeginTransaction 开始一个新事务。
	BeginTransaction() error

	// Produce 在当前事务中写入一条消息，并注入追踪头。
	// 写入是异步的，投递失败会在 CommitTransaction 时体现。
	Produce(ctx context.Context, msg *kafka.Message) error

	// Flush 等待队列中的消息发送完成，ctx 取消时返回 ErrFlushTimeout。
	Flush(ctx context.Context) error

	// CommitTransaction 提交当前事务。
	// 返回的错误已包装对应的 mqcore 哨兵错误（可用 errors.Is 判断）。
	CommitTransaction(ctx context.Context) error

	// AbortTransaction 中止当前事务。
	AbortTransaction(ctx context.Context) error

	// Health 执行健康检查。
	// 通过获取 Broker 元数据验证连接状态。
	Health(ctx context.Context) error

	// Stats 返回统计信息。
	Stats() TxnStats

	// Close 刷新并关闭 producer（受 FlushTimeout 限制）。
	// 重复调用 Close 安全返回 ErrClosed。
	Close() error
}

// TxnStats 包含事务 producer 的统计信息。
type TxnStats struct {
	// MessagesProduced 已成功入队的消息数量。
	// 设计决策: 入队成功不等于投递成功，事务提交成功才代表消息可见。
	MessagesProduced int64
	// BytesProduced 已成功入队的消息字节数。
	BytesProduced int64
	// Commits 成功提交的事务数。
	Commits int64
	// Aborts 成功中止的事务数。
	Aborts int64
	// Errors 事务操作和入队失败的次数。
	Errors int64
	// QueueLength 当前队列中等待发送的消息数量。
	QueueLength int
}

// =============================================================================
// 工厂函数
// =============================================================================

// NewTxnProducer 创建事务 producer 并执行 InitTransactions。
//
// props 必须包含 bootstrap.servers 和 transactional.id。
// InitTransactions 会隔离同一 transactional.id 的旧实例并中止其未完成事务，
// 因此不能用它来恢复已预提交的事务，恢复请使用 [ResumableProducer]。
func NewTxnProducer(ctx context.Context, props map[string]string, opts ...ProducerOption) (TxnProducer, error) {
	w, err := newTxnProducer(props, opts...)
	if err != nil {
		return nil, err
	}
	if err := w.initTransactions(ctx); err != nil {
		w.producer.Close()
		return nil, err
	}
	return w, nil
}

func newTxnProducer(props map[string]string, opts ...ProducerOption) (*txnProducer, error) {
	cfg, err := ConfigMap(props)
	if err != nil {
		return nil, err
	}
	txnID := props[KeyTransactionalID]
	if txnID == "" {
		return nil, ErrEmptyTransactionalID
	}

	options := applyProducerOptions(opts)

	// 投递结果在事务提交时统一体现，不需要逐条 delivery report
	if err := cfg.SetKey("go.delivery.reports", false); err != nil {
		return nil, fmt.Errorf("xkafka: set go.delivery.reports: %w", err)
	}

	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}

	w := &txnProducer{
		producer:        producer,
		transactionalID: txnID,
		options:         options,
		headers:         mqcore.NewHeaderInjector(options.Propagator),
	}
	go w.drainEvents(producer.Events())
	return w, nil
}

// =============================================================================
// 实现
// =============================================================================

// txnProducer 实现 TxnProducer 接口。
type txnProducer struct {
	producer        *kafka.Producer
	transactionalID string
	options         *producerOptions
	headers         mqcore.HeaderInjector

	// mu 保护 GetMetadata、Len、Close 等管理操作与关闭之间的并发。
	// 事务操作本身由 librdkafka 串行化，不需要加锁。
	mu     sync.Mutex
	closed atomic.Bool

	messagesProduced atomic.Int64
	bytesProduced    atomic.Int64
	commits          atomic.Int64
	aborts           atomic.Int64
	errors           atomic.Int64
}

// 确保实现接口
var _ TxnProducer = (*txnProducer)(nil)

func (w *txnProducer) Producer() *kafka.Producer {
	return w.producer
}

func (w *txnProducer) TransactionalID() string {
	return w.transactionalID
}

func (w *txnProducer) initTransactions(ctx context.Context) error {
	return w.txnCall(ctx, "init_transactions", w.producer.InitTransactions, nil)
}

func (w *txnProducer) BeginTransaction() error {
	if w.closed.Load() {
		return ErrClosed
	}
	if err := w.producer.BeginTransaction(); err != nil {
		w.errors.Add(1)
		return w.wrap("begin_transaction", err)
	}
	return nil
}

func (w *txnProducer) CommitTransaction(ctx context.Context) error {
	if w.closed.Load() {
		return ErrClosed
	}
	return w.txnCall(ctx, "commit_transaction", w.producer.CommitTransaction, &w.commits)
}

func (w *txnProducer) AbortTransaction(ctx context.Context) error {
	if w.closed.Load() {
		return ErrClosed
	}
	return w.txnCall(ctx, "abort_transaction", w.producer.AbortTransaction, &w.aborts)
}

// txnCall 在 span 中执行一次事务协调操作，成功时累加 done。
func (w *txnProducer) txnCall(ctx context.Context, op string, call func(context.Context) error, done *atomic.Int64) (err error) {
	ctx, span := w.start(ctx, op)
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	if err = call(ctx); err != nil {
		w.errors.Add(1)
		return w.wrap(op, err)
	}
	if done != nil {
		done.Add(1)
	}
	return nil
}

// wrap 附上操作名和 transactional.id，并挂上分类哨兵。
func (w *txnProducer) wrap(op string, err error) error {
	return fmt.Errorf("xkafka: %s %q: %w", strings.ReplaceAll(op, "_", " "), w.transactionalID, classified(err))
}

func (w *txnProducer) Produce(ctx context.Context, msg *kafka.Message) error {
	switch {
	case msg == nil:
		return ErrNilMessage
	case w.closed.Load():
		return ErrClosed
	}

	carrier := make(map[string]string, 3)
	w.headers.Inject(ctx, carrier)
	msg.Headers = mergeHeaders(msg.Headers, carrier)

	if err := w.producer.Produce(msg, nil); err != nil {
		w.errors.Add(1)
		return err
	}
	w.messagesProduced.Add(1)
	w.bytesProduced.Add(int64(len(msg.Key) + len(msg.Value)))
	return nil
}

// Flush 以 100ms 为步长轮询，直到队列清空或 ctx 结束。
func (w *txnProducer) Flush(ctx context.Context) error {
	if w.closed.Load() {
		return ErrClosed
	}
	for w.producer.Flush(100) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrFlushTimeout, err)
		}
	}
	return nil
}

// Health 在后台 goroutine 中拉取 broker 元数据。ctx 先结束时立即返回，
// 但后台调用会持有 mu 直到 HealthTimeout，期间 Close 会等待。
func (w *txnProducer) Health(ctx context.Context) (err error) {
	if w.closed.Load() {
		return ErrClosed
	}
	ctx, span := w.start(ctx, "health")
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	done := make(chan error, 1)
	go func() { done <- w.fetchMetadata() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err = <-done:
		return err
	}
}

func (w *txnProducer) fetchMetadata() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed.Load() {
		return ErrClosed
	}
	if _, err := w.producer.GetMetadata(nil, true, int(w.options.HealthTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("%w: %w", ErrHealthCheckFailed, err)
	}
	return nil
}

// Stats 返回统计快照，producer 关闭后 QueueLength 为 0。
func (w *txnProducer) Stats() TxnStats {
	stats := TxnStats{
		MessagesProduced: w.messagesProduced.Load(),
		BytesProduced:    w.bytesProduced.Load(),
		Commits:          w.commits.Load(),
		Aborts:           w.aborts.Load(),
		Errors:           w.errors.Load(),
	}
	w.mu.Lock()
	if !w.closed.Load() {
		stats.QueueLength = w.producer.Len()
	}
	w.mu.Unlock()
	return stats
}

// Close 在 FlushTimeout 内刷新队列后关闭，仍有消息未发出时返回 ErrFlushTimeout。
func (w *txnProducer) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	remaining := w.producer.Flush(int(w.options.FlushTimeout.Milliseconds()))
	w.producer.Close()
	if remaining > 0 {
		return fmt.Errorf("%w: %d messages still in queue", ErrFlushTimeout, remaining)
	}
	return nil
}

// drainEvents 消费 librdkafka 事件通道，producer 关闭后通道关闭，goroutine 退出。
// delivery report 已关闭，通道中只剩客户端级别的错误和统计事件。
func (w *txnProducer) drainEvents(events chan kafka.Event) {
	for ev := range events {
		ke, ok := ev.(kafka.Error)
		if !ok {
			continue
		}
		w.errors.Add(1)
		w.options.Logger.Warn(context.Background(), "kafka producer event error",
			xlog.TransactionalID(w.transactionalID),
			xlog.Err(ke),
		)
	}
}

func (w *txnProducer) start(ctx context.Context, operation string) (context.Context, xmetrics.Span) {
	return xmetrics.Start(ctx, w.options.Observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: operation,
		Kind:      xmetrics.KindProducer,
		Attrs:     kafkaAttrs(w.transactionalID),
	})
}

// mergeHeaders 用 carrier 中的键覆盖同名消息头，其余消息头保持原顺序。
func mergeHeaders(headers []kafka.Header, carrier map[string]string) []kafka.Header {
	if len(carrier) == 0 {
		return headers
	}
	merged := make([]kafka.Header, 0, len(headers)+len(carrier))
	for _, h := range headers {
		if _, ok := carrier[h.Key]; !ok {
			merged = append(merged, h)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(carrier)) {
		merged = append(merged, kafka.Header{Key: key, Value: []byte(carrier[key])})
	}
	return merged
}

// =============================================================================
// 选项
// =============================================================================

// producerOptions 包含事务 producer 的配置选项。
type producerOptions struct {
	Observer      xmetrics.Observer
	Logger        xlog.Logger
	Propagator    propagation.TextMapPropagator
	FlushTimeout  time.Duration
	HealthTimeout time.Duration
}

func defaultProducerOptions() *producerOptions {
	return &producerOptions{
		Observer:      xmetrics.NoopObserver{},
		Logger:        xlog.Nop(),
		FlushTimeout:  10 * time.Second,
		HealthTimeout: 5 * time.Second,
	}
}

func applyProducerOptions(opts []ProducerOption) *producerOptions {
	o := defaultProducerOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// ProducerOption 定义事务 producer 的配置选项函数类型。
type ProducerOption func(*producerOptions)

// WithProducerObserver 设置统一观测接口。
func WithProducerObserver(observer xmetrics.Observer) ProducerOption {
	return func(o *producerOptions) {
		if observer != nil {
			o.Observer = observer
		}
	}
}

// WithProducerLogger 设置日志记录器，用于记录 librdkafka 事件错误。
func WithProducerLogger(logger xlog.Logger) ProducerOption {
	return func(o *producerOptions) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithProducerPropagator 设置消息头追踪传播器，默认 TraceContext + Baggage。
func WithProducerPropagator(p propagation.TextMapPropagator) ProducerOption {
	return func(o *producerOptions) {
		if p != nil {
			o.Propagator = p
		}
	}
}

// WithProducerFlushTimeout 设置关闭时的刷新超时时间。
func WithProducerFlushTimeout(d time.Duration) ProducerOption {
	return func(o *producerOptions) {
		if d > 0 {
			o.FlushTimeout = d
		}
	}
}

// WithProducerHealthTimeout 设置健康检查超时时间。
func WithProducerHealthTimeout(d time.Duration) ProducerOption {
	return func(o *producerOptions) {
		if d > 0 {
			o.HealthTimeout = d
		}
	}
}
