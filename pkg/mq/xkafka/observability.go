package xkafka

import (
	"context"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/observability/xmetrics"
)

const (
	componentName = "xkafka"
)

func kafkaAttrs(transactionalID string) []xmetrics.Attr {
	attrs := []xmetrics.Attr{xmetrics.String("messaging.system", "kafka")}
	if transactionalID != "" {
		attrs = append(attrs, xmetrics.String("messaging.kafka.transactional_id", transactionalID))
	}
	return attrs
}

// kgoLogger 把 franz-go 客户端日志转发到 xlog.Logger。
type kgoLogger struct {
	logger xlog.Logger
	level  kgo.LogLevel
}

func newKgoLogger(logger xlog.Logger, level kgo.LogLevel) kgo.Logger {
	return &kgoLogger{
		logger: logger.With(xlog.Component(componentName)),
		level:  level,
	}
}

func (l *kgoLogger) Level() kgo.LogLevel { return l.level }

func (l *kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	attrs := make([]slog.Attr, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = "!badkey"
		}
		attrs = append(attrs, slog.Any(key, keyvals[i+1]))
	}

	ctx := context.Background()
	switch level {
	case kgo.LogLevelError:
		l.logger.Error(ctx, msg, attrs...)
	case kgo.LogLevelWarn:
		l.logger.Warn(ctx, msg, attrs...)
	case kgo.LogLevelInfo:
		l.logger.Info(ctx, msg, attrs...)
	default:
		l.logger.Debug(ctx, msg, attrs...)
	}
}
