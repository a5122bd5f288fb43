package xrun

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Ticker 返回按固定间隔执行 fn 的服务函数。
//
// immediate 为 true 时启动即执行一次。fn 返回错误时服务退出。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}
		if immediate {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// cronParser 支持标准 5 段表达式、带秒的 6 段表达式（秒在首位）
// 与 "@every 30s"、"@hourly" 等描述符。
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule 校验并解析 cron 表达式。
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, spec, err)
	}
	return sched, nil
}

// Cron 返回按 cron 表达式执行 fn 的服务函数。
//
// 设计决策: 不使用 cron.Cron 的后台 goroutine 调度，而是在服务 goroutine 内按
// Schedule.Next 串行等待。上一次 fn 未返回时不会触发下一次，错过的触发点直接跳过。
// fn 返回错误时服务退出。
func Cron(spec string, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if fn == nil {
			return ErrNilFunc
		}
		sched, err := ParseSchedule(spec)
		if err != nil {
			return err
		}

		for {
			next := sched.Next(time.Now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-timer.C:
				if err := fn(ctx); err != nil {
					return err
				}
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
}
