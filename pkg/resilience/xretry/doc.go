// Package xretry 提供重试策略、退避策略以及基于 [avast/retry-go/v5] 的执行器。
//
// # 设计理念
//
//   - RetryPolicy：决定是否继续重试
//   - BackoffPolicy：决定两次尝试之间的间隔
//   - Retryer：组合两者并交给 retry-go 执行
//
// # 使用方式
//
//	retryer := xretry.NewRetryer(
//	    xretry.WithRetryPolicy(xretry.NewFixedRetry(3)),
//	    xretry.WithBackoffPolicy(xretry.NewExponentialBackoff()),
//	)
//	err := retryer.Do(ctx, func(ctx context.Context) error {
//	    return commitPending(ctx)
//	})
//
// # 错误分类
//
//   - NewPermanentError(err)：永久性错误，立即停止重试
//   - NewTemporaryError(err)：临时性错误，继续重试
//   - 未标记的错误默认视为可重试
//
// 提交协调器同样依据这一分类把 NewPermanentError 标记的错误视为致命错误。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
