package xkafka

import (
	"context"
	"maps"
	"strconv"
	"sync/atomic"

	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/util/xpool"
)

// NewTxnProducerPool 创建事务 producer 池。
//
// 池按需创建 producer，第 n 个（从 0 开始）的 transactional.id 为 idPrefix-n，
// 每个 producer 创建时执行 InitTransactions，ctx 用于这些调用。
// 借出的 producer 由 [xpool.Recyclable] 包装，提交完成后归还即可复用同一个 transactional.id。
// 被丢弃的 producer（超出空闲上限或池已关闭）会被 Close。
// 池默认使用 opts 中的 logger，poolOpts 可以覆盖。
func NewTxnProducerPool(ctx context.Context, props map[string]string, idPrefix string,
	poolOpts []xpool.Option, opts ...ProducerOption) (*xpool.Pool[TxnProducer], error) {
	if idPrefix == "" {
		return nil, ErrEmptyTransactionalID
	}
	// 提前校验连接属性，避免首次借出时才发现配置错误
	if _, err := ConfigMap(props); err != nil {
		return nil, err
	}

	base := maps.Clone(props)
	var seq atomic.Int64
	factory := func() (TxnProducer, error) {
		cfg := maps.Clone(base)
		cfg[KeyTransactionalID] = idPrefix + "-" + strconv.FormatInt(seq.Add(1)-1, 10)
		return NewTxnProducer(ctx, cfg, opts...)
	}
	logger := applyProducerOptions(opts).Logger
	destroy := func(p TxnProducer) {
		if err := p.Close(); err != nil {
			logger.Warn(context.Background(), "close pooled producer failed",
				xlog.TransactionalID(p.TransactionalID()), xlog.Err(err))
		}
	}
	poolOpts = append([]xpool.Option{xpool.WithLogger(logger)}, poolOpts...)
	return xpool.New(factory, destroy, poolOpts...)
}
