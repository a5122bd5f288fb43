package xconf

import (
	"errors"

	"github.com/knadh/koanf/v2"
)

// Format 是配置数据的格式。
type Format string

const (
	// FormatYAML 对应 .yaml/.yml 文件。
	FormatYAML Format = "yaml"
	// FormatJSON 对应 .json 文件。
	FormatJSON Format = "json"
)

var (
	// ErrEmptyPath 表示 New 收到空路径。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 表示扩展名或 Format 不是 yaml/json。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 表示读取文件、环境变量或写入默认值失败。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 表示数据无法按声明的格式解析。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 表示配置无法映射到目标结构体。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")
)

// Config 是加载完成后只读的分层配置。
//
// 来源按优先级从低到高：默认值（WithDefaults）、配置数据、环境变量（WithEnvPrefix）。
// 默认值只填补缺失的键，不会覆盖其他来源。
type Config interface {
	// Client 返回底层的 koanf 实例，用于按键读取单个值。
	Client() *koanf.Koanf

	// Unmarshal 把 path 下的配置映射到 target，path 为空表示整个配置。
	// 字符串形式的时长（"30s"）会转换为 time.Duration。
	Unmarshal(path string, target any) error

	// StringMap 以字符串形式返回 path 下全部叶子键，键为相对路径。
	// Kafka 属性名本身含点号（"bootstrap.servers"），拼接后保持原样。
	StringMap(path string) map[string]string

	// Path 返回配置文件路径，NewFromBytes 创建时为空。
	Path() string

	// Format 返回配置数据的格式。
	Format() Format
}
