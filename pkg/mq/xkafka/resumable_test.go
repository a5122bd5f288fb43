package xkafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/omeyang/xcommit/internal/mqcore"
)

// fakeCoordinator 记录收到的 EndTxn 请求并返回预设的错误码。
type fakeCoordinator struct {
	mu        sync.Mutex
	requests  []*kmsg.EndTxnRequest
	errorCode int16
	err       error
}

func (f *fakeCoordinator) Request(_ context.Context, req kmsg.Request) (kmsg.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := req.(*kmsg.EndTxnRequest); ok {
		f.requests = append(f.requests, r)
	}
	if f.err != nil {
		return nil, f.err
	}
	resp := kmsg.NewPtrEndTxnResponse()
	resp.ErrorCode = f.errorCode
	return resp, nil
}

func newTestResumable(t *testing.T, coord *fakeCoordinator, txnID string) (*ResumableProducer, *int) {
	t.Helper()
	closes := 0
	p := newResumableProducer(coord, func() { closes++ }, txnID, defaultResumableOptions())
	return p, &closes
}

func TestNewResumableProducer_Validation(t *testing.T) {
	p, err := NewResumableProducer(map[string]string{KeyBootstrapServers: "localhost:9092"}, "")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrEmptyTransactionalID)

	p, err = NewResumableProducer(nil, "t1")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrNilConfig)

	p, err = NewResumableProducer(map[string]string{}, "t1")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrMissingBootstrap)
}

func TestNewResumableProducer_UnsupportedSecurity(t *testing.T) {
	p, err := NewResumableProducer(map[string]string{
		KeyBootstrapServers: "localhost:9093",
		KeySecurityProtocol: "SASL_SSL",
		KeySASLMechanism:    "GSSAPI",
	}, "t1")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrUnsupportedConfig)
}

func TestNewResumableProducer_NoConnectOnCreate(t *testing.T) {
	p, err := NewResumableProducer(map[string]string{KeyBootstrapServers: "127.0.0.1:1"}, "t1",
		WithResumableLogger(nil),
		WithResumableObserver(nil),
	)
	require.NoError(t, err)

	assert.Equal(t, "t1", p.TransactionalID())
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}

func TestResumableProducer_CommitSendsEndTxn(t *testing.T) {
	coord := &fakeCoordinator{}
	p, _ := newTestResumable(t, coord, "t1")

	require.NoError(t, p.ResumeTransaction(5, 2))
	require.NoError(t, p.CommitTransaction(context.Background()))

	require.Len(t, coord.requests, 1)
	req := coord.requests[0]
	assert.Equal(t, "t1", req.TransactionalID)
	assert.Equal(t, int64(5), req.ProducerID)
	assert.Equal(t, int16(2), req.ProducerEpoch)
	assert.True(t, req.Commit)
}

func TestResumableProducer_CommitRequiresResume(t *testing.T) {
	coord := &fakeCoordinator{}
	p, _ := newTestResumable(t, coord, "t1")

	err := p.CommitTransaction(context.Background())
	assert.ErrorIs(t, err, ErrNotResumed)
	assert.Empty(t, coord.requests)

	// 提交成功后身份被消费，需要重新恢复
	require.NoError(t, p.ResumeTransaction(1, 0))
	require.NoError(t, p.CommitTransaction(context.Background()))
	assert.ErrorIs(t, p.CommitTransaction(context.Background()), ErrNotResumed)
}

func TestResumableProducer_RebindResetsResume(t *testing.T) {
	coord := &fakeCoordinator{}
	p, _ := newTestResumable(t, coord, "t1")

	require.NoError(t, p.ResumeTransaction(5, 2))
	require.NoError(t, p.SetTransactionalID("t2"))
	assert.Equal(t, "t2", p.TransactionalID())
	assert.ErrorIs(t, p.CommitTransaction(context.Background()), ErrNotResumed)

	require.NoError(t, p.ResumeTransaction(9, 4))
	require.NoError(t, p.CommitTransaction(context.Background()))
	require.Len(t, coord.requests, 1)
	assert.Equal(t, "t2", coord.requests[0].TransactionalID)
	assert.Equal(t, int64(9), coord.requests[0].ProducerID)
	assert.Equal(t, int16(4), coord.requests[0].ProducerEpoch)
}

func TestResumableProducer_Validation(t *testing.T) {
	p, _ := newTestResumable(t, &fakeCoordinator{}, "t1")

	assert.ErrorIs(t, p.SetTransactionalID(""), ErrEmptyTransactionalID)
	assert.Equal(t, "t1", p.TransactionalID())
	assert.ErrorIs(t, p.ResumeTransaction(-1, 0), ErrInvalidProducerID)
	assert.ErrorIs(t, p.ResumeTransaction(1, -1), ErrInvalidProducerID)
}

func TestResumableProducer_ErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int16
		sentinel error
		kind     mqcore.TxnErrorKind
	}{
		{"invalid state", kerr.InvalidTxnState.Code, ErrInvalidTxnState, mqcore.KindInvalidTxnState},
		{"fenced", kerr.ProducerFenced.Code, ErrProducerFenced, mqcore.KindFenced},
		{"epoch", kerr.InvalidProducerEpoch.Code, ErrProducerFenced, mqcore.KindFenced},
		{"auth", kerr.TransactionalIDAuthorizationFailed.Code, ErrTxnFatal, mqcore.KindFatal},
		{"concurrent", kerr.ConcurrentTransactions.Code, nil, mqcore.KindRetriable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestResumable(t, &fakeCoordinator{errorCode: tt.code}, "t1")
			require.NoError(t, p.ResumeTransaction(5, 2))

			err := p.CommitTransaction(context.Background())
			require.Error(t, err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			assert.Equal(t, tt.kind, ClassifyError(err))
			assert.Contains(t, err.Error(), "t1")
		})
	}
}

func TestResumableProducer_TransportError(t *testing.T) {
	transport := errors.New("dial tcp: connection refused")
	p, _ := newTestResumable(t, &fakeCoordinator{err: transport}, "t1")
	require.NoError(t, p.ResumeTransaction(5, 2))

	err := p.CommitTransaction(context.Background())
	assert.ErrorIs(t, err, transport)
	assert.Equal(t, mqcore.KindRetriable, ClassifyError(err))
}

func TestResumableProducer_Close(t *testing.T) {
	p, closes := newTestResumable(t, &fakeCoordinator{}, "t1")

	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
	assert.Equal(t, 1, *closes)

	assert.ErrorIs(t, p.SetTransactionalID("t2"), ErrClosed)
	assert.ErrorIs(t, p.ResumeTransaction(1, 1), ErrClosed)
	assert.ErrorIs(t, p.CommitTransaction(context.Background()), ErrClosed)
}
