package xkafka

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/twmb/franz-go/pkg/kgo"
)

// 常用属性键（librdkafka 命名）。
const (
	KeyBootstrapServers     = "bootstrap.servers"
	KeyTransactionalID      = "transactional.id"
	KeyTransactionTimeoutMs = "transaction.timeout.ms"
	KeyClientID             = "client.id"
	// KeyRequestTimeoutMs 在恢复 producer 上映射为 kgo.RequestTimeoutOverhead。
	// librdkafka 中它是请求的总超时；kgo 的 overhead 会叠加在请求自带的
	// TimeoutMillis 字段之上。EndTxn 没有该字段，因此对恢复提交二者等价。
	KeyRequestTimeoutMs     = "request.timeout.ms"
	KeyDialTimeoutMs        = "socket.connection.setup.timeout.ms"
	KeyRetries              = "retries"
	KeyRetryBackoffMs       = "retry.backoff.ms"
)

// DefaultTransactionTimeout 是 transaction.timeout.ms 未配置时 broker 侧的默认事务超时。
const DefaultTransactionTimeout = 60 * time.Second

// ConfigMap 把字符串属性转换为 *kafka.ConfigMap。
//
// "go." 前缀的键是 confluent-kafka-go 自身的配置，要求 bool/int 类型，
// 因此会尝试按 bool、int 解析；其余键原样交给 librdkafka。
// 返回的 ConfigMap 是新对象，修改它不会影响 props。
func ConfigMap(props map[string]string) (*kafka.ConfigMap, error) {
	if props == nil {
		return nil, ErrNilConfig
	}
	if strings.TrimSpace(props[KeyBootstrapServers]) == "" {
		return nil, ErrMissingBootstrap
	}

	cm := &kafka.ConfigMap{}
	for k, v := range props {
		if err := cm.SetKey(k, goValue(k, v)); err != nil {
			return nil, fmt.Errorf("xkafka: set config key %q: %w", k, err)
		}
	}
	return cm, nil
}

func goValue(key, value string) kafka.ConfigValue {
	if !strings.HasPrefix(key, "go.") {
		return value
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}

// TransactionTimeout 读取 transaction.timeout.ms。
// 未配置或无法解析时返回 DefaultTransactionTimeout。
func TransactionTimeout(props map[string]string) time.Duration {
	ms, ok := positiveInt(props, KeyTransactionTimeoutMs)
	if !ok {
		return DefaultTransactionTimeout
	}
	return time.Duration(ms) * time.Millisecond
}

// =============================================================================
// franz-go 客户端配置
// =============================================================================

// clientSettings 是恢复 producer 从字符串属性中识别出的连接配置。
// 未识别的调优键（如 linger.ms）被忽略；安全相关键见 parseSecurity。
type clientSettings struct {
	security
	seeds          []string
	clientID       string
	requestTimeout time.Duration
	dialTimeout    time.Duration
	retries        int
	retryBackoff   time.Duration
}

func parseClientSettings(props map[string]string) (clientSettings, error) {
	var s clientSettings
	if props == nil {
		return s, ErrNilConfig
	}
	for _, seed := range strings.Split(props[KeyBootstrapServers], ",") {
		if seed = strings.TrimSpace(seed); seed != "" {
			s.seeds = append(s.seeds, seed)
		}
	}
	if len(s.seeds) == 0 {
		return s, ErrMissingBootstrap
	}
	s.clientID = props[KeyClientID]

	var err error
	if s.requestTimeout, err = durationMs(props, KeyRequestTimeoutMs); err != nil {
		return s, err
	}
	if s.dialTimeout, err = durationMs(props, KeyDialTimeoutMs); err != nil {
		return s, err
	}
	if s.retryBackoff, err = durationMs(props, KeyRetryBackoffMs); err != nil {
		return s, err
	}
	if v, ok := props[KeyRetries]; ok {
		n, convErr := strconv.Atoi(strings.TrimSpace(v))
		if convErr != nil || n < 0 {
			return s, fmt.Errorf("xkafka: invalid %s %q", KeyRetries, v)
		}
		s.retries = n
	}
	s.security, err = parseSecurity(props)
	return s, err
}

// kgoOptions 转换为 kgo.Opt。零值字段不产生选项，保留 kgo 默认值。
func (s clientSettings) kgoOptions() []kgo.Opt {
	opts := []kgo.Opt{kgo.SeedBrokers(s.seeds...)}
	if s.clientID != "" {
		opts = append(opts, kgo.ClientID(s.clientID))
	}
	if s.requestTimeout > 0 {
		opts = append(opts, kgo.RequestTimeoutOverhead(s.requestTimeout))
	}
	if s.dialTimeout > 0 {
		opts = append(opts, kgo.DialTimeout(s.dialTimeout))
	}
	if s.retries > 0 {
		opts = append(opts, kgo.RequestRetries(s.retries))
	}
	if s.retryBackoff > 0 {
		backoff := s.retryBackoff
		opts = append(opts, kgo.RetryBackoffFn(func(int) time.Duration { return backoff }))
	}
	if s.tls != nil {
		opts = append(opts, kgo.DialTLSConfig(s.tls))
	}
	if s.sasl != nil {
		opts = append(opts, kgo.SASL(s.sasl))
	}
	return opts
}

// ClientOptions 把字符串属性转换为 franz-go 客户端选项。
// 只识别连接和安全相关的键，见 KeyBootstrapServers、KeySecurityProtocol 等常量；
// 无法映射的 ssl.* / sasl.* 键返回 ErrUnsupportedConfig。
func ClientOptions(props map[string]string) ([]kgo.Opt, error) {
	s, err := parseClientSettings(props)
	if err != nil {
		return nil, err
	}
	return s.kgoOptions(), nil
}

func durationMs(props map[string]string, key string) (time.Duration, error) {
	v, ok := props[key]
	if !ok {
		return 0, nil
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("xkafka: invalid %s %q", key, v)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func positiveInt(props map[string]string, key string) (int64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
