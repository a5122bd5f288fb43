package xconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
kafka:
  bootstrap.servers: broker-1:9092,broker-2:9092
  transaction.timeout.ms: 900000
sink:
  name: orders
driver:
  attempts: 5
`

type sinkSection struct {
	Name               string        `koanf:"name"`
	TransactionTimeout time.Duration `koanf:"transaction_timeout"`
}

func TestNew_YAMLWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xcommitctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := New(path, WithDefaults(map[string]any{
		"sink.transaction_timeout": "60s",
		"driver.attempts":          1,
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, FormatYAML, cfg.Format())

	var sink sinkSection
	require.NoError(t, cfg.Unmarshal("sink", &sink))
	assert.Equal(t, "orders", sink.Name)
	assert.Equal(t, time.Minute, sink.TransactionTimeout)

	// 文件中已有的键不被默认值覆盖
	assert.Equal(t, 5, cfg.Client().Int("driver.attempts"))

	props := cfg.StringMap("kafka")
	assert.Equal(t, map[string]string{
		"bootstrap.servers":      "broker-1:9092,broker-2:9092",
		"transaction.timeout.ms": "900000",
	}, props)
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte(`{"kafka":{"client.id":"xcommit"}}`), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, cfg.Path())
	assert.Equal(t, map[string]string{"client.id": "xcommit"}, cfg.StringMap("kafka"))
	assert.Empty(t, cfg.StringMap("missing"))

	empty, err := NewFromBytes(nil, FormatYAML, WithDefaults(map[string]any{"sink.name": "fallback"}))
	require.NoError(t, err)
	assert.Equal(t, "fallback", empty.Client().String("sink.name"))

	_, err = NewFromBytes([]byte("a: b"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewFromBytes([]byte("{not json"), FormatJSON)
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New("config.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestUnmarshal_Error(t *testing.T) {
	cfg, err := NewFromBytes([]byte("sink:\n  transaction_timeout: soon\n"), FormatYAML)
	require.NoError(t, err)

	var sink sinkSection
	assert.ErrorIs(t, cfg.Unmarshal("sink", &sink), ErrUnmarshalFailed)
}

func TestWithDelimAndTag(t *testing.T) {
	type section struct {
		Name string `json:"name"`
	}
	cfg, err := NewFromBytes([]byte(`{"sink":{"name":"orders"}}`), FormatJSON, WithDelim("/"), WithTag("json"), WithDelim(""))
	require.NoError(t, err)

	var s section
	require.NoError(t, cfg.Unmarshal("sink", &s))
	assert.Equal(t, "orders", s.Name)
	assert.Equal(t, "orders", cfg.Client().String("sink/name"))
}

func TestWithEnvPrefix(t *testing.T) {
	t.Setenv("XCTEST_SINK__NAME", "from-env")
	t.Setenv("XCTEST_SINK__TRANSACTION_TIMEOUT", "2m")
	t.Setenv("XCTEST_DRIVER__LOCK_TTL", "45s")
	t.Setenv("OTHER_SINK__NAME", "ignored")

	cfg, err := NewFromBytes([]byte(sampleYAML), FormatYAML,
		WithEnvPrefix("XCTEST_"),
		WithDefaults(map[string]any{"driver.lock_ttl": "30s", "driver.attempts": 1}),
	)
	require.NoError(t, err)

	var sink sinkSection
	require.NoError(t, cfg.Unmarshal("sink", &sink))
	assert.Equal(t, "from-env", sink.Name, "env overrides file")
	assert.Equal(t, 2*time.Minute, sink.TransactionTimeout)

	assert.Equal(t, "45s", cfg.Client().String("driver.lock_ttl"), "env wins over defaults")
	assert.Equal(t, 5, cfg.Client().Int("driver.attempts"))
	assert.Equal(t, "broker-1:9092,broker-2:9092", cfg.StringMap("kafka")["bootstrap.servers"])
}

func TestEnvKeyMapper(t *testing.T) {
	mapper := envKeyMapper("XC_", ".")
	assert.Equal(t, "redis.addr", mapper("XC_REDIS__ADDR"))
	assert.Equal(t, "driver.breaker_failures", mapper("XC_DRIVER__BREAKER_FAILURES"))
	assert.Equal(t, "config", mapper("XC_CONFIG"))
}
