package xconf

// Options 是配置加载选项。
type Options struct {
	// Delim 是键路径分隔符，默认 "."。
	Delim string

	// Tag 是 Unmarshal 使用的结构体标签，默认 "koanf"。
	Tag string

	// Defaults 以完整路径为键，只在其他来源缺少该键时写入。
	Defaults map[string]any

	// EnvPrefix 非空时加载以它开头的环境变量，见 WithEnvPrefix。
	EnvPrefix string
}

// Option 是配置加载选项函数。
type Option func(*Options)

// WithDelim 设置键路径分隔符，空字符串被忽略。
func WithDelim(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.Delim = delim
		}
	}
}

// WithTag 设置 Unmarshal 的结构体标签名，空字符串被忽略。
func WithTag(tag string) Option {
	return func(o *Options) {
		if tag != "" {
			o.Tag = tag
		}
	}
}

// WithDefaults 设置默认值，键使用完整路径（如 "driver.attempts"）。多次调用合并。
func WithDefaults(defaults map[string]any) Option {
	return func(o *Options) {
		if len(defaults) == 0 {
			return
		}
		if o.Defaults == nil {
			o.Defaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			o.Defaults[k] = v
		}
	}
}

// WithEnvPrefix 让以 prefix 开头的环境变量覆盖配置数据。
//
// 去掉前缀后转为小写，双下划线表示层级，单下划线保留：
// XCOMMIT_DRIVER__LOCK_TTL=1m 对应键 "driver.lock_ttl"。
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) {
		o.EnvPrefix = prefix
	}
}
