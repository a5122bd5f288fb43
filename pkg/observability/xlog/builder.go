package xlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ErrEmptyFilename 表示 SetRotation 收到空文件名。
var ErrEmptyFilename = errors.New("xlog: rotation filename is empty")

// ReplaceAttrFunc 同 slog.HandlerOptions.ReplaceAttr，返回空 Key 的 Attr 会删除该字段。
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// Rotation 是 lumberjack 的轮转参数，非正数字段取默认值（100MB、7 个备份、30 天）。
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func (r Rotation) writer(filename string) *lumberjack.Logger {
	orDefault := func(v, def int) int {
		if v <= 0 {
			return def
		}
		return v
	}
	return &lumberjack.Logger{
		Filename:   filepath.Clean(filename),
		MaxSize:    orDefault(r.MaxSizeMB, 100),
		MaxBackups: orDefault(r.MaxBackups, 7),
		MaxAge:     orDefault(r.MaxAgeDays, 30),
		Compress:   r.Compress,
		LocalTime:  true,
	}
}

// Builder 按链式调用收集配置，第一个配置错误由 Build 返回。
type Builder struct {
	output      io.Writer
	closer      io.Closer
	level       slog.LevelVar
	json        bool
	addSource   bool
	noEnrich    bool
	replaceAttr ReplaceAttrFunc
	attrs       []slog.Attr
	onError     func(error)
	err         error
}

// New 返回写 stderr、Info 级别、text 格式、启用 EnrichHandler 的 Builder。
func New() *Builder {
	return &Builder{output: os.Stderr}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// SetOutput 设置输出，nil 被忽略。
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w != nil {
		b.output, b.closer = w, nil
	}
	return b
}

func (b *Builder) SetLevel(level Level) *Builder {
	b.level.Set(slog.Level(level))
	return b
}

// SetLevelString 用 ParseLevel 解析 s，通常来自配置的 log.level。
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		return b.fail(err)
	}
	return b.SetLevel(level)
}

// SetFormat 接受 "text"（默认，空串同义）或 "json"。
func (b *Builder) SetFormat(format string) *Builder {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		b.json = false
	case "json":
		b.json = true
	default:
		return b.fail(fmt.Errorf("xlog: unknown format %q", format))
	}
	return b
}

func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetEnrich 控制是否用 EnrichHandler 注入 ctx 字段，默认开启。
func (b *Builder) SetEnrich(enable bool) *Builder {
	b.noEnrich = !enable
	return b
}

// SetAttrs 追加每条日志都带的字段。
func (b *Builder) SetAttrs(attrs ...slog.Attr) *Builder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// SetRotation 改为写入 filename 并按大小轮转，rotation 只取第一个。
func (b *Builder) SetRotation(filename string, rotation ...Rotation) *Builder {
	if strings.TrimSpace(filename) == "" {
		return b.fail(ErrEmptyFilename)
	}
	var r Rotation
	if len(rotation) > 0 {
		r = rotation[0]
	}
	lj := r.writer(filename)
	b.output, b.closer = lj, lj
	return b
}

// SetOnError 设置写日志失败时的回调，回调在调用方 goroutine 同步执行。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

func (b *Builder) SetReplaceAttr(fn ReplaceAttrFunc) *Builder {
	b.replaceAttr = fn
	return b
}

// Build 返回 logger 和幂等的 cleanup（关闭轮转文件）。
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	level := new(slog.LevelVar)
	level.Set(b.level.Level())
	opts := &slog.HandlerOptions{Level: level, AddSource: b.addSource, ReplaceAttr: b.replaceAttr}

	var handler slog.Handler
	if b.json {
		handler = slog.NewJSONHandler(b.output, opts)
	} else {
		handler = slog.NewTextHandler(b.output, opts)
	}
	if !b.noEnrich {
		handler = &EnrichHandler{next: handler}
	}
	if len(b.attrs) > 0 {
		handler = handler.WithAttrs(b.attrs)
	}

	logger := &xlogger{
		handler:   handler,
		addSource: b.addSource,
		shared:    &shared{level: level, onError: b.onError},
	}

	cleanup := func() error { return nil }
	if closer := b.closer; closer != nil {
		cleanup = sync.OnceValue(closer.Close)
	}
	return logger, cleanup, nil
}
