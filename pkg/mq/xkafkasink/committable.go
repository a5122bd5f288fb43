package xkafkasink

import (
	"fmt"
	"strconv"

	"github.com/omeyang/xcommit/pkg/mq/xkafka"
	"github.com/omeyang/xcommit/pkg/util/xpool"
)

// handleKind 表示 committable 提交时使用的句柄来源。
type handleKind int

const (
	// needsRecovery 没有活句柄，需要通过恢复 producer 提交。
	needsRecovery handleKind = iota
	// liveHandle 携带写入阶段借出的事务 producer。
	liveHandle
)

func (k handleKind) String() string {
	if k == liveHandle {
		return "live"
	}
	return "recovery"
}

// Committable 描述一个已预提交、等待最终提交的 Kafka 事务。
//
// 创建后不可变。携带活句柄时，句柄通过 xpool.Recyclable 借出，
// 由 Committer 在提交成功或事务被放弃时归还，可重试的失败不归还。
type Committable struct {
	transactionalID string
	producerID      int64
	epoch           int16
	producer        *xpool.Recyclable[xkafka.TxnProducer]
}

// NewCommittable 创建不带活句柄的 committable（例如从持久化状态恢复）。
func NewCommittable(transactionalID string, producerID int64, epoch int16) (*Committable, error) {
	return NewCommittableWithProducer(transactionalID, producerID, epoch, nil)
}

// NewCommittableWithProducer 创建携带活句柄的 committable。producer 为 nil 时等同于 NewCommittable。
func NewCommittableWithProducer(transactionalID string, producerID int64, epoch int16,
	producer *xpool.Recyclable[xkafka.TxnProducer]) (*Committable, error) {
	if transactionalID == "" {
		return nil, ErrEmptyTransactionalID
	}
	if producerID < 0 || epoch < 0 {
		return nil, fmt.Errorf("%w: producerId=%d epoch=%d", ErrInvalidProducerID, producerID, epoch)
	}
	return &Committable{
		transactionalID: transactionalID,
		producerID:      producerID,
		epoch:           epoch,
		producer:        producer,
	}, nil
}

// TransactionalID 返回 transactional.id。
func (c *Committable) TransactionalID() string { return c.transactionalID }

// ProducerID 返回 broker 分配的 producerId。
func (c *Committable) ProducerID() int64 { return c.producerID }

// Epoch 返回 producer epoch。
func (c *Committable) Epoch() int16 { return c.epoch }

// Producer 返回活句柄，没有时第二个返回值为 false。
func (c *Committable) Producer() (*xpool.Recyclable[xkafka.TxnProducer], bool) {
	return c.producer, c.producer != nil
}

// SameTransaction 报告两个 committable 是否指向同一个事务代次。
func (c *Committable) SameTransaction(other *Committable) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.transactionalID == other.transactionalID &&
		c.producerID == other.producerID &&
		c.epoch == other.epoch
}

// String 返回用于日志的身份描述，不包含句柄。
func (c *Committable) String() string {
	if c == nil {
		return "Committable(nil)"
	}
	return "Committable{transactionalId=" + c.transactionalID +
		", producerId=" + strconv.FormatInt(c.producerID, 10) +
		", epoch=" + strconv.Itoa(int(c.epoch)) + "}"
}

func (c *Committable) handle() handleKind {
	if c.producer != nil {
		return liveHandle
	}
	return needsRecovery
}

// release 归还活句柄。Recyclable.Close 只生效一次。
func (c *Committable) release() {
	if c.producer != nil {
		_ = c.producer.Close()
	}
}

// key 返回事务代次的唯一键，用于在内存中匹配活句柄。
func (c *Committable) key() string {
	return c.transactionalID + "/" + strconv.FormatInt(c.producerID, 10) + "/" + strconv.Itoa(int(c.epoch))
}
