package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

type koanfConfig struct {
	k      *koanf.Koanf
	path   string
	format Format
	tag    string
}

// New 读取 path 指向的文件，按扩展名（.yaml/.yml/.json）选择解析器。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	cfg, err := load(data, format, opts)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// NewFromBytes 解析内存中的配置数据。data 为空时只有默认值和环境变量生效。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if format.parser() == nil {
		return nil, ErrUnsupportedFormat
	}
	return load(data, format, opts)
}

// load 依次叠加配置数据、环境变量，最后补齐默认值。
func load(data []byte, format Format, opts []Option) (*koanfConfig, error) {
	o := &Options{Delim: ".", Tag: "koanf"}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	k := koanf.New(o.Delim)
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), format.parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}
	if o.EnvPrefix != "" {
		provider := env.Provider(o.EnvPrefix, o.Delim, envKeyMapper(o.EnvPrefix, o.Delim))
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("%w: env: %w", ErrLoadFailed, err)
		}
	}
	for key, v := range o.Defaults {
		if k.Exists(key) {
			continue
		}
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("%w: default %q: %w", ErrLoadFailed, key, err)
		}
	}
	return &koanfConfig{k: k, format: format, tag: o.Tag}, nil
}

func (c *koanfConfig) Client() *koanf.Koanf { return c.k }

func (c *koanfConfig) Path() string { return c.path }

func (c *koanfConfig) Format() Format { return c.format }

func (c *koanfConfig) Unmarshal(path string, target any) error {
	err := c.k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.tag})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

func (c *koanfConfig) StringMap(path string) map[string]string {
	sub := c.k.Cut(path)
	out := make(map[string]string)
	for _, key := range sub.Keys() {
		out[key] = sub.String(key)
	}
	return out
}

func formatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

// parser 返回 f 对应的 koanf 解析器，未知格式返回 nil。
func (f Format) parser() koanf.Parser {
	switch f {
	case FormatYAML:
		return yaml.Parser()
	case FormatJSON:
		return json.Parser()
	default:
		return nil
	}
}

// envKeyMapper 把 PREFIX_SECTION__KEY_NAME 转为 section<delim>key_name。
func envKeyMapper(prefix, delim string) func(string) string {
	return func(name string) string {
		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		return strings.ReplaceAll(key, "__", delim)
	}
}
