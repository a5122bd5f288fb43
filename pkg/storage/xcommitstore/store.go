package xcommitstore

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/omeyang/xcommit/pkg/mq/xkafkasink"
	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/observability/xmetrics"
)

const componentName = "xcommitstore"

// removeScript 只删除值与期望一致的 field。
// ARGV 依次为 field, value 对，返回删除的数量。
var removeScript = redis.NewScript(`
	local removed = 0
	for i = 1, #ARGV, 2 do
		if redis.call("HGET", KEYS[1], ARGV[i]) == ARGV[i + 1] then
			removed = removed + redis.call("HDEL", KEYS[1], ARGV[i])
		end
	end
	return removed
`)

// Store 是基于 Redis hash 的待提交事务存储，并发安全。
type Store struct {
	client  redis.UniversalClient
	rs      *redsync.Redsync
	sink    string
	key     string
	lockKey string
	opts    *options
}

// 确保实现 xkafkasink 的协作接口
var (
	_ xkafkasink.Store  = (*Store)(nil)
	_ xkafkasink.Locker = (*Store)(nil)
)

// New 创建 sink 对应的存储。client 可以是 *redis.Client 或 *redis.ClusterClient。
// Store 不持有 client 的所有权，关闭 client 由调用方负责。
func New(client redis.UniversalClient, sink string, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if strings.TrimSpace(sink) == "" {
		return nil, ErrEmptySink
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.logger = o.logger.With(xlog.Component(componentName), slog.String("sink", sink))

	return &Store{
		client:  client,
		rs:      redsync.New(goredis.NewPool(client)),
		sink:    sink,
		key:     o.keyPrefix + sink,
		lockKey: o.lockKeyPrefix + sink,
		opts:    o,
	}, nil
}

// Key 返回待提交 hash 的完整 key。
func (s *Store) Key() string { return s.key }

// Client 返回底层 Redis 客户端。
func (s *Store) Client() redis.UniversalClient { return s.client }

// Add 写入 committable，同一 transactional.id 的旧记录被覆盖。
func (s *Store) Add(ctx context.Context, committables ...*xkafkasink.Committable) (err error) {
	values, err := encodeFields(committables)
	if err != nil || len(values) == 0 {
		return err
	}

	ctx, span := s.start(ctx, "add", len(committables))
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	if err = s.client.HSet(ctx, s.key, values...).Err(); err != nil {
		return fmt.Errorf("xcommitstore: hset %s: %w", s.key, err)
	}
	return nil
}

// Pending 返回全部可解码的 committable，按 transactional.id 排序。
// 无法解码的记录被跳过并记录错误日志，不会被删除。
func (s *Store) Pending(ctx context.Context) (_ []*xkafkasink.Committable, err error) {
	ctx, span := s.start(ctx, "pending", 0)
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("xcommitstore: hgetall %s: %w", s.key, err)
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]*xkafkasink.Committable, 0, len(ids))
	for _, id := range ids {
		c, decodeErr := xkafkasink.DecodeCommittable([]byte(raw[id]))
		if decodeErr == nil && c.TransactionalID() != id {
			decodeErr = fmt.Errorf("%w: field %q holds %s", xkafkasink.ErrCorruptCommittable, id, c)
		}
		if decodeErr != nil {
			s.opts.logger.Error(ctx, "skipping undecodable committable",
				xlog.TransactionalID(id), xlog.Err(decodeErr))
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Remove 删除与给定 committable 身份完全一致的记录。
func (s *Store) Remove(ctx context.Context, committables ...*xkafkasink.Committable) (err error) {
	args, err := encodeFields(committables)
	if err != nil || len(args) == 0 {
		return err
	}

	ctx, span := s.start(ctx, "remove", len(committables))
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	removed, err := removeScript.Run(ctx, s.client, []string{s.key}, args...).Int()
	if err != nil {
		return fmt.Errorf("xcommitstore: remove from %s: %w", s.key, err)
	}
	if removed < len(args)/2 {
		s.opts.logger.Debug(ctx, "some committables were replaced by newer transactions",
			xlog.Count(int64(len(args)/2-removed)))
	}
	return nil
}

// Replace 原子地用 committables 替换全部记录，用于 CLI 导入。
func (s *Store) Replace(ctx context.Context, committables ...*xkafkasink.Committable) (err error) {
	values, err := encodeFields(committables)
	if err != nil {
		return err
	}

	ctx, span := s.start(ctx, "replace", len(committables))
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("xcommitstore: replace %s: %w", s.key, err)
	}
	return nil
}

// Delete 无条件删除指定 transactional.id 的记录，包括无法解码的记录。
func (s *Store) Delete(ctx context.Context, transactionalIDs ...string) (int64, error) {
	if len(transactionalIDs) == 0 {
		return 0, nil
	}
	n, err := s.client.HDel(ctx, s.key, transactionalIDs...).Result()
	if err != nil {
		return 0, fmt.Errorf("xcommitstore: hdel %s: %w", s.key, err)
	}
	return n, nil
}

// Len 返回记录数量（包括无法解码的记录）。
func (s *Store) Len(ctx context.Context) (int64, error) {
	n, err := s.client.HLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("xcommitstore: hlen %s: %w", s.key, err)
	}
	return n, nil
}

func (s *Store) start(ctx context.Context, op string, n int) (context.Context, xmetrics.Span) {
	return xmetrics.Start(ctx, s.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: op,
		Kind:      xmetrics.KindClient,
		Attrs: []xmetrics.Attr{
			xmetrics.String("db.system", "redis"),
			xmetrics.String("sink", s.sink),
			xmetrics.Int("batch.size", n),
		},
	})
}

// encodeFields 把 committable 编码为 field, value 交替的参数列表，nil 元素被忽略。
func encodeFields(committables []*xkafkasink.Committable) ([]any, error) {
	values := make([]any, 0, 2*len(committables))
	for _, c := range committables {
		if c == nil {
			continue
		}
		data, err := xkafkasink.EncodeCommittable(c)
		if err != nil {
			return nil, fmt.Errorf("xcommitstore: encode %s: %w", c, err)
		}
		values = append(values, c.TransactionalID(), string(data))
	}
	return values, nil
}
