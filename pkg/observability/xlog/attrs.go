package xlog

import (
	"log/slog"
	"time"
)

// 各组件共用的日志字段名。
const (
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyCount     = "count"
	KeyComponent = "component"

	// 事务身份与结果
	KeyTransactionalID = "transactional_id"
	KeyProducerID      = "producer_id"
	KeyEpoch           = "epoch"
	KeyOutcome         = "outcome"
)

// Err 返回 error 字段；err 为 nil 时返回零值 Attr，slog 会丢弃它。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 以 time.Duration 的字符串形式（"1.5s"）记录耗时。
func Duration(d time.Duration) slog.Attr { return slog.String(KeyDuration, d.String()) }

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

func Count(n int64) slog.Attr { return slog.Int64(KeyCount, n) }

// TransactionalID、ProducerID、Epoch 一起标识一个待提交的 Kafka 事务。
func TransactionalID(id string) slog.Attr { return slog.String(KeyTransactionalID, id) }

func ProducerID(id int64) slog.Attr { return slog.Int64(KeyProducerID, id) }

func Epoch(epoch int16) slog.Attr { return slog.Int(KeyEpoch, int(epoch)) }

// Outcome 记录单个事务的提交结果：committed、abandoned 或 retry。
func Outcome(outcome string) slog.Attr { return slog.String(KeyOutcome, outcome) }
