// xcommitctl 是 Kafka 事务提交协调器的命令行工具。
//
// 用法:
//
//	xcommitctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config   配置文件路径（yaml/json）
//	-t, --timeout  单次命令超时时间 (默认: 30s，serve 只在 --once 时使用)
//
// 命令:
//
//	commit         提交一组已预提交的事务（从 JSON 文件或参数读取）
//	serve          按计划周期性提交 Redis 中的待提交事务
//	inspect        解码二进制编码的 committable
//	pending        查看/导入/删除 Redis 中的待提交事务
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败
//	2: 参数错误（缺少必需参数、格式错误、未知命令等）
//	3: commit 命令完成，但仍有需要重试的事务
//
// 示例:
//
//	xcommitctl -c sink.yaml commit t1:5:2 t2:7:3
//	xcommitctl -c sink.yaml commit --file committables.json
//	xcommitctl -c sink.yaml serve
//	xcommitctl inspect 000000010000000000000005000200027431
//	xcommitctl -c sink.yaml pending list
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

// defaultTimeout 默认超时时间。
const defaultTimeout = 30 * time.Second

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xcommitctl",
		Usage:   "Kafka 事务提交协调器命令行工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（yaml/json），为空时只使用默认值",
				Sources: cli.EnvVars("XCOMMIT_CONFIG"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "单次命令超时时间",
				Value:   defaultTimeout,
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一映射退出码。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string) int {
	app := createApp()
	if err := app.Run(ctx, args); err != nil {
		return exitCode(err)
	}
	return 0
}

// exitCode 把命令错误映射为退出码，并输出错误信息。
func exitCode(err error) int {
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if _, ok := err.(cli.ExitCoder); ok {
		return 2
	}
	fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	return 1
}

// exitError 表示命令已完成输出，只需要设置非零退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 表示参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}
