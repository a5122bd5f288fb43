package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/xcommit/pkg/config/xconf"
	"github.com/omeyang/xcommit/pkg/lifecycle/xrun"
	"github.com/omeyang/xcommit/pkg/mq/xkafkasink"
	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/resilience/xbreaker"
	"github.com/omeyang/xcommit/pkg/resilience/xretry"
)

// appConfig 是配置文件的结构。kafka 段是透传给 producer 的属性，单独读取。
//
//	kafka:
//	  bootstrap.servers: localhost:9092
//	  transaction.timeout.ms: 900000
//	sink:
//	  name: orders
//	redis:
//	  addr: localhost:6379
//	log:
//	  level: info
//	  format: json
//	driver:
//	  schedule: "@every 10s"
//	  attempts: 3
//	  backoff: 1s
//	  lock_ttl: 30s
//	  breaker_failures: 3
type appConfig struct {
	Kafka  xkafkasink.ProducerConfig `koanf:"-"`
	Sink   sinkConfig                `koanf:"sink"`
	Redis  redisConfig               `koanf:"redis"`
	Log    logConfig                 `koanf:"log"`
	Driver driverConfig              `koanf:"driver"`
}

type sinkConfig struct {
	Name      string `koanf:"name"`
	KeyPrefix string `koanf:"key_prefix"`
}

type redisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type logConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File 非空时输出到文件并按大小轮转
	File string `koanf:"file"`
}

type driverConfig struct {
	Schedule        string        `koanf:"schedule"`
	Attempts        int           `koanf:"attempts"`
	Backoff         time.Duration `koanf:"backoff"`
	LockTTL         time.Duration `koanf:"lock_ttl"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
}

var configDefaults = map[string]any{
	"sink.name":               "default",
	"sink.key_prefix":         "xcommit:pending:",
	"redis.addr":              "localhost:6379",
	"log.level":               "info",
	"log.format":              "text",
	"driver.schedule":         "@every 10s",
	"driver.attempts":         1,
	"driver.backoff":          "1s",
	"driver.lock_ttl":         "30s",
	"driver.breaker_failures": 3,
}

// envPrefix 开头的环境变量覆盖配置文件，如 XCOMMIT_REDIS__ADDR。
const envPrefix = "XCOMMIT_"

// loadConfig 读取配置文件和环境变量，path 为空时只使用环境变量和默认值。
func loadConfig(path string) (*appConfig, error) {
	var (
		cfg  xconf.Config
		err  error
		opts = []xconf.Option{xconf.WithDefaults(configDefaults), xconf.WithEnvPrefix(envPrefix)}
	)
	if path == "" {
		cfg, err = xconf.NewFromBytes([]byte("{}"), xconf.FormatJSON, opts...)
	} else {
		cfg, err = xconf.New(path, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var out appConfig
	if err := cfg.Unmarshal("", &out); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	out.Kafka = xkafkasink.ProducerConfig(cfg.StringMap("kafka"))
	if err := out.validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *appConfig) validate() error {
	if strings.TrimSpace(c.Sink.Name) == "" {
		return usagef("sink.name must not be empty")
	}
	if c.Driver.Attempts < 1 {
		return usagef("driver.attempts must be at least 1, got %d", c.Driver.Attempts)
	}
	if _, err := xrun.ParseSchedule(c.Driver.Schedule); err != nil {
		return usagef("driver.schedule: %v", err)
	}
	return nil
}

// buildLogger 按 log 段创建日志记录器。
func (c *appConfig) buildLogger(w io.Writer) (xlog.Logger, func() error, error) {
	b := xlog.New().
		SetOutput(w).
		SetLevelString(c.Log.Level).
		SetFormat(c.Log.Format)
	if c.Log.File != "" {
		b = b.SetRotation(c.Log.File)
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, cleanup, nil
}

func (c *appConfig) redisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
}

// retryer 返回周期内重试策略，attempts 为 1 时不重试。
func (c *appConfig) retryer() *xretry.Retryer {
	if c.Driver.Attempts <= 1 {
		return xretry.NewRetryer(
			xretry.WithRetryPolicy(xretry.NewNeverRetry()),
			xretry.WithBackoffPolicy(xretry.NewNoBackoff()),
		)
	}
	return xretry.NewRetryer(
		xretry.WithRetryPolicy(xretry.NewFixedRetry(c.Driver.Attempts)),
		xretry.WithBackoffPolicy(xretry.NewFixedBackoff(c.Driver.Backoff)),
	)
}

func (c *appConfig) breaker() *xbreaker.Breaker {
	failures := c.Driver.BreakerFailures
	if failures == 0 {
		failures = 3
	}
	return xbreaker.NewBreaker("xcommitctl:"+c.Sink.Name,
		xbreaker.WithTripPolicy(xbreaker.NewConsecutiveFailures(failures)),
	)
}
