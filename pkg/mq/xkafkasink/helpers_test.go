package xkafkasink

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/omeyang/xcommit/pkg/mq/xkafka"
	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/observability/xmetrics"
	"github.com/omeyang/xcommit/pkg/util/xpool"
)

var testConfig = ProducerConfig{
	xkafka.KeyBootstrapServers:     "localhost:9092",
	xkafka.KeyTransactionTimeoutMs: "900000",
}

// liveFixture 是携带 mock 活句柄的 committable 及其归还计数。
type liveFixture struct {
	committable *Committable
	producer    *MockTxnProducer
	handle      *xpool.Recyclable[xkafka.TxnProducer]

	mu       sync.Mutex
	recycled int
}

func (f *liveFixture) recycleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recycled
}

func newLive(t *testing.T, ctrl *gomock.Controller, id string, producerID int64, epoch int16) *liveFixture {
	t.Helper()
	f := &liveFixture{producer: NewMockTxnProducer(ctrl)}
	f.handle = xpool.NewRecyclable[xkafka.TxnProducer](f.producer, func(xkafka.TxnProducer) {
		f.mu.Lock()
		f.recycled++
		f.mu.Unlock()
	})
	c, err := NewCommittableWithProducer(id, producerID, epoch, f.handle)
	require.NoError(t, err)
	f.committable = c
	return f
}

func mustCommittable(t *testing.T, id string, producerID int64, epoch int16) *Committable {
	t.Helper()
	c, err := NewCommittable(id, producerID, epoch)
	require.NoError(t, err)
	return c
}

// factoryRecorder 记录恢复 producer 工厂的调用。
type factoryRecorder struct {
	mu       sync.Mutex
	producer xkafka.RecoveryProducer
	err      error
	ids      []string
	cfgs     []ProducerConfig
}

func (f *factoryRecorder) factory(cfg ProducerConfig, transactionalID string) (xkafka.RecoveryProducer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, transactionalID)
	f.cfgs = append(f.cfgs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return f.producer, nil
}

func (f *factoryRecorder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}

func newTestCommitter(t *testing.T, opts ...Option) *Committer {
	t.Helper()
	c, err := NewCommitter(testConfig, opts...)
	require.NoError(t, err)
	return c
}

// newJSONLogger 返回写入 buf 的 debug 级别 JSON 日志记录器。
func newJSONLogger(t *testing.T, buf *bytes.Buffer) xlog.Logger {
	t.Helper()
	logger, cleanup, err := xlog.New().SetOutput(buf).SetFormat("json").SetLevel(xlog.LevelDebug).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return logger
}

// outcomeObserver 记录 span 操作名和 outcome 计数。
type outcomeObserver struct {
	mu         sync.Mutex
	operations []string
	outcomes   map[string]int64
}

func newOutcomeObserver() *outcomeObserver {
	return &outcomeObserver{outcomes: make(map[string]int64)}
}

func (o *outcomeObserver) Start(ctx context.Context, opts xmetrics.SpanOptions) (context.Context, xmetrics.Span) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.operations = append(o.operations, opts.Operation)
	return ctx, xmetrics.NoopSpan{}
}

func (o *outcomeObserver) RecordOutcome(_ context.Context, _, outcome string, n int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[outcome] += n
}

func (o *outcomeObserver) count(outcome string) int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcomes[outcome]
}
