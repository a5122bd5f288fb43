package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xcommit/pkg/lifecycle/xrun"
	"github.com/omeyang/xcommit/pkg/mq/xkafkasink"
	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/observability/xmetrics"
	"github.com/omeyang/xcommit/pkg/storage/xcommitstore"
)

// recoveryFactory 非 nil 时替换默认的恢复 producer 构造函数（测试注入）。
var recoveryFactory xkafkasink.RecoveryFactory

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createCommitCommand(),
		createServeCommand(),
		createInspectCommand(),
		createPendingCommand(),
	}
}

// createCommitCommand 创建 commit 子命令。
func createCommitCommand() *cli.Command {
	return &cli.Command{
		Name:      "commit",
		Usage:     "提交一组已预提交的事务",
		ArgsUsage: "[transactionalId:producerId:epoch ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "committable JSON 文件（EncodeCommittablesJSON 格式）",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			committables, err := collectCommittables(cmd.String("file"), cmd.Args().Slice())
			if err != nil {
				return err
			}
			return cmdCommit(ctx, cmd, committables)
		},
	}
}

// createServeCommand 创建 serve 子命令。
func createServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "按 driver.schedule 周期性提交 Redis 中的待提交事务",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "只执行一次提交周期并输出报告",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdServe(ctx, cmd, cmd.Bool("once"))
		},
	}
}

// createInspectCommand 创建 inspect 子命令。
func createInspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "解码十六进制的 committable 二进制编码",
		ArgsUsage: "<hex> [hex ...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "encode",
				Usage: "反向操作：把 transactionalId:producerId:epoch 编码为十六进制",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return usagef("inspect requires at least one argument")
			}
			if cmd.Bool("encode") {
				return cmdEncode(stdout(cmd), args)
			}
			return cmdInspect(stdout(cmd), args)
		},
	}
}

// createPendingCommand 创建 pending 子命令组。
func createPendingCommand() *cli.Command {
	return &cli.Command{
		Name:  "pending",
		Usage: "查看/导入/删除 Redis 中的待提交事务",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "以 JSON 输出全部待提交事务",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withStore(ctx, cmd, func(ctx context.Context, store *xcommitstore.Store) error {
						return cmdPendingList(ctx, cmd, store)
					})
				},
			},
			{
				Name:  "import",
				Usage: "从 JSON 文件导入待提交事务",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "committable JSON 文件",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "替换全部现有记录，而不是合并",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					committables, err := readCommittablesFile(cmd.String("file"))
					if err != nil {
						return err
					}
					return withStore(ctx, cmd, func(ctx context.Context, store *xcommitstore.Store) error {
						if cmd.Bool("replace") {
							err = store.Replace(ctx, committables...)
						} else {
							err = store.Add(ctx, committables...)
						}
						if err != nil {
							return err
						}
						fmt.Fprintf(stdout(cmd), "imported %d committables\n", len(committables))
						return nil
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "无条件删除指定 transactional.id 的记录",
				ArgsUsage: "<transactionalId> [transactionalId ...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ids := cmd.Args().Slice()
					if len(ids) == 0 {
						return usagef("delete requires at least one transactional id")
					}
					return withStore(ctx, cmd, func(ctx context.Context, store *xcommitstore.Store) error {
						n, err := store.Delete(ctx, ids...)
						if err != nil {
							return err
						}
						fmt.Fprintf(stdout(cmd), "deleted %d committables\n", n)
						return nil
					})
				},
			},
		},
	}
}

// =============================================================================
// 命令实现
// =============================================================================

// commitOutput 是 commit 命令的输出格式。
type commitOutput struct {
	Committed []*xkafkasink.Committable `json:"committed"`
	Abandoned []*xkafkasink.Committable `json:"abandoned"`
	Retry     []*xkafkasink.Committable `json:"retry"`
}

func cmdCommit(ctx context.Context, cmd *cli.Command, committables []*xkafkasink.Committable) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	committer, err := env.committer()
	if err != nil {
		return err
	}
	defer committer.Close()

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	res, commitErr := committer.CommitResult(ctx, committables)
	if err := writeJSON(stdout(cmd), commitOutput{
		Committed: nonNil(res.Committed),
		Abandoned: nonNil(res.Abandoned),
		Retry:     nonNil(res.Retry),
	}); err != nil {
		return err
	}
	if commitErr != nil {
		return commitErr
	}
	if len(res.Retry) > 0 {
		return &exitError{code: 3}
	}
	return nil
}

func cmdServe(ctx context.Context, cmd *cli.Command, once bool) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	client := env.cfg.redisClient()
	defer client.Close()

	store, err := env.store(client)
	if err != nil {
		return err
	}
	committer, err := env.committer()
	if err != nil {
		return err
	}
	driver, err := xkafkasink.NewDriver(committer, store,
		xkafkasink.WithDriverLogger(env.logger),
		xkafkasink.WithDriverObserver(env.observer),
		xkafkasink.WithSink(env.cfg.Sink.Name),
		xkafkasink.WithRetryer(env.cfg.retryer()),
		xkafkasink.WithBreaker(env.cfg.breaker()),
		xkafkasink.WithLockTTL(env.cfg.Driver.LockTTL),
	)
	if err != nil {
		_ = committer.Close()
		return err
	}
	defer driver.Close()

	if once {
		ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
		defer cancel()
		report, err := driver.RunCycle(ctx, 1)
		if writeErr := writeJSON(stdout(cmd), report); writeErr != nil {
			return writeErr
		}
		return err
	}

	env.logger.Info(ctx, "serving commit cycles",
		xlog.Component("xcommitctl"),
	)
	err = xrun.RunServices(ctx,
		[]xrun.Option{xrun.WithLogger(env.logger), xrun.WithName("xcommitctl")},
		xrun.Named("commit-cycle", xrun.ServiceFunc(xrun.Cron(env.cfg.Driver.Schedule, driver.Tick))),
	)
	if errors.Is(err, xrun.ErrSignal) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func cmdInspect(w io.Writer, args []string) error {
	out := make([]*xkafkasink.Committable, 0, len(args))
	for _, arg := range args {
		data, err := hex.DecodeString(strings.TrimSpace(arg))
		if err != nil {
			return usagef("invalid hex %q: %v", arg, err)
		}
		c, err := xkafkasink.DecodeCommittable(data)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	return writeJSON(w, out)
}

func cmdEncode(w io.Writer, args []string) error {
	for _, arg := range args {
		c, err := parseCommittable(arg)
		if err != nil {
			return err
		}
		data, err := xkafkasink.EncodeCommittable(c)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, hex.EncodeToString(data))
	}
	return nil
}

func cmdPendingList(ctx context.Context, cmd *cli.Command, store *xcommitstore.Store) error {
	pending, err := store.Pending(ctx)
	if err != nil {
		return err
	}
	if err := writeJSON(stdout(cmd), pending); err != nil {
		return err
	}
	total, err := store.Len(ctx)
	if err != nil {
		return err
	}
	if skipped := total - int64(len(pending)); skipped > 0 {
		fmt.Fprintf(stderr(cmd), "%d undecodable records skipped, see log for transactional ids\n", skipped)
	}
	return nil
}

// =============================================================================
// 运行环境
// =============================================================================

// cmdEnv 汇总一次命令执行所需的配置、日志和观测。
type cmdEnv struct {
	cfg      *appConfig
	logger   xlog.Logger
	observer xmetrics.Observer
	cleanup  func() error
}

func newEnv(cmd *cli.Command) (*cmdEnv, error) {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	logger, cleanup, err := cfg.buildLogger(stderr(cmd))
	if err != nil {
		return nil, err
	}
	observer, err := xmetrics.NewOTelObserver()
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("create observer: %w", err)
	}
	return &cmdEnv{cfg: cfg, logger: logger, observer: observer, cleanup: cleanup}, nil
}

func (e *cmdEnv) close() {
	if e.cleanup != nil {
		_ = e.cleanup()
	}
}

func (e *cmdEnv) committer() (*xkafkasink.Committer, error) {
	opts := []xkafkasink.Option{
		xkafkasink.WithLogger(e.logger),
		xkafkasink.WithObserver(e.observer),
	}
	if recoveryFactory != nil {
		opts = append(opts, xkafkasink.WithRecoveryFactory(recoveryFactory))
	}
	committer, err := xkafkasink.NewCommitter(e.cfg.Kafka, opts...)
	if err != nil {
		return nil, usagef("kafka config: %v", err)
	}
	return committer, nil
}

func (e *cmdEnv) store(client redis.UniversalClient) (*xcommitstore.Store, error) {
	return xcommitstore.New(client, e.cfg.Sink.Name,
		xcommitstore.WithKeyPrefix(e.cfg.Sink.KeyPrefix),
		xcommitstore.WithLogger(e.logger),
		xcommitstore.WithObserver(e.observer),
	)
}

// withStore 在命令超时内使用 Redis 存储执行 fn。
func withStore(ctx context.Context, cmd *cli.Command, fn func(context.Context, *xcommitstore.Store) error) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	client := e.cfg.redisClient()
	defer client.Close()

	store, err := e.store(client)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()
	return fn(ctx, store)
}

// =============================================================================
// 参数解析与输出
// =============================================================================

// collectCommittables 合并 JSON 文件和命令行参数中的 committable。
func collectCommittables(file string, args []string) ([]*xkafkasink.Committable, error) {
	var out []*xkafkasink.Committable
	if file != "" {
		fromFile, err := readCommittablesFile(file)
		if err != nil {
			return nil, err
		}
		out = append(out, fromFile...)
	}
	for _, arg := range args {
		c, err := parseCommittable(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, usagef("no committables given, use --file or transactionalId:producerId:epoch arguments")
	}
	return out, nil
}

func readCommittablesFile(path string) ([]*xkafkasink.Committable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	committables, err := xkafkasink.DecodeCommittablesJSON(data)
	if err != nil {
		return nil, usagef("%s: %v", path, err)
	}
	return committables, nil
}

// parseCommittable 解析 transactionalId:producerId:epoch。
// transactional.id 本身可以包含冒号，因此从右侧切分。
func parseCommittable(arg string) (*xkafkasink.Committable, error) {
	epochSep := strings.LastIndex(arg, ":")
	if epochSep <= 0 {
		return nil, usagef("invalid committable %q, want transactionalId:producerId:epoch", arg)
	}
	pidSep := strings.LastIndex(arg[:epochSep], ":")
	if pidSep <= 0 {
		return nil, usagef("invalid committable %q, want transactionalId:producerId:epoch", arg)
	}

	producerID, err := strconv.ParseInt(arg[pidSep+1:epochSep], 10, 64)
	if err != nil {
		return nil, usagef("invalid producer id in %q: %v", arg, err)
	}
	epoch, err := strconv.ParseInt(arg[epochSep+1:], 10, 16)
	if err != nil {
		return nil, usagef("invalid epoch in %q: %v", arg, err)
	}
	c, err := xkafkasink.NewCommittable(arg[:pidSep], producerID, int16(epoch))
	if err != nil {
		return nil, usagef("%q: %v", arg, err)
	}
	return c, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNil(cs []*xkafkasink.Committable) []*xkafkasink.Committable {
	if cs == nil {
		return []*xkafkasink.Committable{}
	}
	return cs
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
