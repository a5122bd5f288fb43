package xkafka

import (
	"errors"

	"github.com/omeyang/xcommit/internal/mqcore"
)

// 重导出共享错误（xkafka 和 xkafkasink 共同使用）
var (
	// ErrNilClient 表示传入的客户端为空。
	ErrNilClient = mqcore.ErrNilClient

	// ErrClosed 表示客户端已关闭。
	ErrClosed = mqcore.ErrClosed

	// ErrInvalidTxnState 表示事务不处于可提交状态。
	ErrInvalidTxnState = mqcore.ErrInvalidTxnState

	// ErrProducerFenced 表示 producer 已被隔离。
	ErrProducerFenced = mqcore.ErrProducerFenced

	// ErrTxnFatal 表示不可恢复的事务错误。
	ErrTxnFatal = mqcore.ErrTxnFatal
)

// Kafka 特有错误
var (
	// ErrNilConfig 表示传入的配置为空。
	ErrNilConfig = errors.New("xkafka: nil config")

	// ErrNilMessage 表示传入的消息为空。
	ErrNilMessage = errors.New("xkafka: nil message")

	// ErrMissingBootstrap 表示配置缺少 bootstrap.servers。
	ErrMissingBootstrap = errors.New("xkafka: bootstrap.servers is required")

	// ErrEmptyTransactionalID 表示 transactional.id 为空。
	ErrEmptyTransactionalID = errors.New("xkafka: empty transactional id")

	// ErrInvalidProducerID 表示 producerId 或 epoch 为负数。
	ErrInvalidProducerID = errors.New("xkafka: invalid producer id or epoch")

	// ErrNotResumed 表示恢复 producer 在 ResumeTransaction 之前被要求提交。
	ErrNotResumed = errors.New("xkafka: transaction not resumed")

	// ErrUnsupportedConfig 表示恢复 producer 无法映射某个安全相关属性。
	ErrUnsupportedConfig = errors.New("xkafka: unsupported client config")

	// ErrFlushTimeout 表示消息刷新超时。
	ErrFlushTimeout = errors.New("xkafka: flush timeout")

	// ErrHealthCheckFailed 表示健康检查失败。
	ErrHealthCheckFailed = errors.New("xkafka: health check failed")
)
