package mqcore

import (
	"errors"
	"strconv"
)

// 哨兵错误由 xkafka/xkafkasink 重导出，前缀用 "mq:" 而非包名。
var (
	// ErrNilClient 表示传入的客户端为空。
	ErrNilClient = errors.New("mq: nil client")
	// ErrClosed 表示客户端已关闭。
	ErrClosed = errors.New("mq: client closed")

	// ErrInvalidTxnState 对应 KindInvalidTxnState：broker 报告事务不可提交，通常已被中止。
	ErrInvalidTxnState = errors.New("mq: invalid transaction state")
	// ErrProducerFenced 对应 KindFenced：同一 transactional.id 已被更新的 producer 接管。
	ErrProducerFenced = errors.New("mq: producer fenced")
	// ErrTxnFatal 对应 KindFatal：鉴权、协议版本等影响所有事务的错误。
	ErrTxnFatal = errors.New("mq: fatal transaction error")
)

// TxnErrorKind 事务操作失败的分类。
// 提交决策只依赖此分类，而不是客户端的错误类型层次。
type TxnErrorKind int

const (
	// KindNone 无错误。
	KindNone TxnErrorKind = iota
	// KindInvalidTxnState 事务已不可提交（通常已被 broker 超时中止），重试无意义。
	KindInvalidTxnState
	// KindFenced producer 已被隔离，重试无意义。
	KindFenced
	// KindRetriable 暂时性失败（网络、broker 不可用、超时等），下一周期重试。
	KindRetriable
	// KindFatal 协调器级别的失败，应中止本次提交周期。
	KindFatal
)

// String 返回可读名称，用于日志和指标标签。
func (k TxnErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidTxnState:
		return "invalid_txn_state"
	case KindFenced:
		return "fenced"
	case KindRetriable:
		return "retriable"
	case KindFatal:
		return "fatal"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Abandoned 报告该分类是否意味着事务被永久放弃（不再重试）。
func (k TxnErrorKind) Abandoned() bool {
	return k == KindInvalidTxnState || k == KindFenced
}

// KindOf 根据哨兵错误推导分类。
// 未包装任何哨兵错误的非 nil 错误返回 KindRetriable。
func KindOf(err error) TxnErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidTxnState):
		return KindInvalidTxnState
	case errors.Is(err, ErrProducerFenced):
		return KindFenced
	case errors.Is(err, ErrTxnFatal):
		return KindFatal
	default:
		return KindRetriable
	}
}

// SentinelFor 返回分类对应的哨兵错误，KindNone/KindRetriable 返回 nil。
func SentinelFor(kind TxnErrorKind) error {
	switch kind {
	case KindInvalidTxnState:
		return ErrInvalidTxnState
	case KindFenced:
		return ErrProducerFenced
	case KindFatal:
		return ErrTxnFatal
	default:
		return nil
	}
}
