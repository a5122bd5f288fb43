// Package xrun 管理常驻进程内多个服务的并发运行与协调关闭。
//
// 基于 errgroup：任一服务返回错误或收到系统信号时，其余服务都会收到取消信号。
//
//	err := xrun.RunServices(ctx, []xrun.Option{xrun.WithName("xcommitctl")},
//	    xrun.ServiceFunc(xrun.Cron("@every 30s", func(ctx context.Context) error {
//	        return driver.Tick(ctx)
//	    })),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常退出
//	}
//
// 周期任务提供两种调度：
//   - [Ticker]：固定间隔
//   - [Cron]：robfig/cron 表达式（支持 "@every 1m"、标准 5 段表达式和秒在首位的 6 段表达式）
package xrun
