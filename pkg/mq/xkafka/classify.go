package xkafka

import (
	"errors"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/twmb/franz-go/pkg/kerr"

	"github.com/omeyang/xcommit/internal/mqcore"
	"github.com/omeyang/xcommit/pkg/resilience/xretry"
)

// ClassifyError 将事务操作的错误映射为 mqcore.TxnErrorKind。
//
// 判断顺序：
//  1. 已包装的 mqcore 哨兵错误
//  2. xretry.PermanentError 视为 KindFatal
//  3. confluent-kafka-go 的 kafka.Error 错误码
//  4. franz-go 的 kerr 错误码
//
// 都不匹配的非 nil 错误返回 KindRetriable，包括 context 取消和超时。
func ClassifyError(err error) mqcore.TxnErrorKind {
	if err == nil {
		return mqcore.KindNone
	}
	if kind := mqcore.KindOf(err); kind != mqcore.KindRetriable {
		return kind
	}
	if xretry.IsPermanent(err) {
		return mqcore.KindFatal
	}

	var ke kafka.Error
	if errors.As(err, &ke) {
		return classifyKafkaError(ke)
	}

	var fe *kerr.Error
	if errors.As(err, &fe) {
		return classifyKerr(fe)
	}
	return mqcore.KindRetriable
}

func classifyKafkaError(ke kafka.Error) mqcore.TxnErrorKind {
	switch ke.Code() {
	case kafka.ErrInvalidTxnState, kafka.ErrInvalidProducerIDMapping:
		return mqcore.KindInvalidTxnState
	case kafka.ErrProducerFenced, kafka.ErrFenced, kafka.ErrInvalidProducerEpoch:
		return mqcore.KindFenced
	case kafka.ErrTransactionalIDAuthorizationFailed,
		kafka.ErrClusterAuthorizationFailed,
		kafka.ErrUnsupportedVersion:
		return mqcore.KindFatal
	}
	// librdkafka 要求中止的事务无法再提交
	if ke.TxnRequiresAbort() {
		return mqcore.KindInvalidTxnState
	}
	if ke.IsFatal() {
		return mqcore.KindFatal
	}
	return mqcore.KindRetriable
}

func classifyKerr(fe *kerr.Error) mqcore.TxnErrorKind {
	switch fe.Code {
	case kerr.InvalidTxnState.Code, kerr.InvalidProducerIDMapping.Code:
		return mqcore.KindInvalidTxnState
	case kerr.ProducerFenced.Code, kerr.InvalidProducerEpoch.Code:
		return mqcore.KindFenced
	case kerr.TransactionalIDAuthorizationFailed.Code,
		kerr.ClusterAuthorizationFailed.Code,
		kerr.UnsupportedVersion.Code:
		return mqcore.KindFatal
	default:
		return mqcore.KindRetriable
	}
}

// classified 为 err 补上分类对应的哨兵错误，调用方可直接使用 errors.Is 判断。
func classified(err error) error {
	if err == nil {
		return nil
	}
	sentinel := mqcore.SentinelFor(ClassifyError(err))
	if sentinel == nil || errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
