package mqcore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want TxnErrorKind
	}{
		{"nil", nil, KindNone},
		{"invalid_state", ErrInvalidTxnState, KindInvalidTxnState},
		{"wrapped_invalid_state", fmt.Errorf("commit t1: %w", ErrInvalidTxnState), KindInvalidTxnState},
		{"fenced", fmt.Errorf("%w: epoch 3", ErrProducerFenced), KindFenced},
		{"fatal", fmt.Errorf("%w: auth", ErrTxnFatal), KindFatal},
		{"unknown", errors.New("connection reset"), KindRetriable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestTxnErrorKind_Abandoned(t *testing.T) {
	assert.True(t, KindInvalidTxnState.Abandoned())
	assert.True(t, KindFenced.Abandoned())
	assert.False(t, KindRetriable.Abandoned())
	assert.False(t, KindFatal.Abandoned())
	assert.False(t, KindNone.Abandoned())
}

func TestTxnErrorKind_String(t *testing.T) {
	assert.Equal(t, "invalid_txn_state", KindInvalidTxnState.String())
	assert.Equal(t, "fenced", KindFenced.String())
	assert.Equal(t, "retriable", KindRetriable.String())
	assert.Equal(t, "fatal", KindFatal.String())
	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "kind(42)", TxnErrorKind(42).String())
}

func TestSentinelFor_RoundTrip(t *testing.T) {
	for _, kind := range []TxnErrorKind{KindInvalidTxnState, KindFenced, KindFatal} {
		assert.Equal(t, kind, KindOf(SentinelFor(kind)))
	}
	assert.NoError(t, SentinelFor(KindRetriable))
	assert.NoError(t, SentinelFor(KindNone))
}

func TestSentinels_SharedPrefix(t *testing.T) {
	for _, err := range []error{ErrNilClient, ErrClosed, ErrInvalidTxnState, ErrProducerFenced, ErrTxnFatal} {
		assert.Regexp(t, `^mq: `, err.Error())
	}
	assert.Equal(t, KindRetriable, KindOf(ErrClosed), "client errors are not transaction verdicts")
}
