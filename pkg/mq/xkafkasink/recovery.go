package xkafkasink

import (
	"fmt"

	"github.com/omeyang/xcommit/pkg/mq/xkafka"
)

// recoveryManager 持有 Committer 唯一的恢复 producer。
//
// 首次需要时创建并绑定到 committable 的 transactional.id，
// 之后原地换绑，每次都重新 ResumeTransaction。
// 只由 Committer 在持有周期锁时访问，自身不加锁。
type recoveryManager struct {
	cfg      ProducerConfig
	factory  RecoveryFactory
	producer xkafka.RecoveryProducer
}

func newRecoveryManager(cfg ProducerConfig, factory RecoveryFactory) *recoveryManager {
	return &recoveryManager{cfg: cfg, factory: factory}
}

// resume 返回已绑定并恢复到 c 的事务代次的恢复 producer。
// 创建失败的错误包装 ErrRecoveryProducer。
func (m *recoveryManager) resume(c *Committable) (xkafka.RecoveryProducer, error) {
	if m.producer == nil {
		p, err := m.factory(m.cfg.Clone(), c.transactionalID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRecoveryProducer, err)
		}
		if p == nil {
			return nil, fmt.Errorf("%w: factory returned nil", ErrRecoveryProducer)
		}
		m.producer = p
	} else if err := m.producer.SetTransactionalID(c.transactionalID); err != nil {
		return nil, fmt.Errorf("xkafkasink: rebind recovery producer to %q: %w", c.transactionalID, err)
	}

	if err := m.producer.ResumeTransaction(c.producerID, c.epoch); err != nil {
		return nil, fmt.Errorf("xkafkasink: resume %s: %w", c, err)
	}
	return m.producer, nil
}

// created 报告恢复 producer 是否已创建。
func (m *recoveryManager) created() bool {
	return m.producer != nil
}

// close 关闭已创建的恢复 producer。未创建或已关闭时返回 nil。
func (m *recoveryManager) close() error {
	if m.producer == nil {
		return nil
	}
	p := m.producer
	m.producer = nil
	return p.Close()
}
