package xkafkasink

import (
	"errors"

	"github.com/omeyang/xcommit/internal/mqcore"
	"github.com/omeyang/xcommit/pkg/mq/xkafka"
)

// 重导出共享错误
var (
	// ErrClosed 表示 Committer 或 Driver 已关闭。
	ErrClosed = mqcore.ErrClosed

	// ErrInvalidTxnState 表示事务不处于可提交状态。
	ErrInvalidTxnState = mqcore.ErrInvalidTxnState

	// ErrProducerFenced 表示 producer 已被隔离。
	ErrProducerFenced = mqcore.ErrProducerFenced

	// ErrTxnFatal 表示不可恢复的事务错误。
	ErrTxnFatal = mqcore.ErrTxnFatal

	// ErrNilConfig 表示 ProducerConfig 为空。
	ErrNilConfig = xkafka.ErrNilConfig

	// ErrMissingBootstrap 表示 ProducerConfig 缺少 bootstrap.servers。
	ErrMissingBootstrap = xkafka.ErrMissingBootstrap
)

// xkafkasink 特有错误
var (
	// ErrEmptyTransactionalID 表示 transactional.id 为空。
	ErrEmptyTransactionalID = errors.New("xkafkasink: empty transactional id")

	// ErrInvalidProducerID 表示 producerId 或 epoch 为负数。
	ErrInvalidProducerID = errors.New("xkafkasink: invalid producer id or epoch")

	// ErrRecoveryProducer 表示无法创建恢复 producer，属于周期级致命错误。
	ErrRecoveryProducer = errors.New("xkafkasink: recovery producer unavailable")

	// ErrCycleInterrupted 表示提交周期在处理完所有 committable 之前被 ctx 中断。
	ErrCycleInterrupted = errors.New("xkafkasink: commit cycle interrupted")

	// ErrUnsupportedVersion 表示序列化数据的版本无法识别。
	ErrUnsupportedVersion = errors.New("xkafkasink: unsupported committable version")

	// ErrCorruptCommittable 表示序列化数据被截断或长度不一致。
	ErrCorruptCommittable = errors.New("xkafkasink: corrupt committable data")

	// ErrNilCommitter 表示 Driver 的 committer 为空。
	ErrNilCommitter = errors.New("xkafkasink: nil committer")

	// ErrNilStore 表示 Driver 的 store 为空。
	ErrNilStore = errors.New("xkafkasink: nil store")
)
