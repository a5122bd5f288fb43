// Package xbreaker 基于 [sony/gobreaker/v2] 的熔断器。
//
// 提交驱动用它包裹每个提交周期：连续多个周期因致命错误失败后熔断打开，
// 在 Timeout 内直接拒绝新的周期，避免对故障集群反复建连。
//
//	breaker := xbreaker.NewBreaker("orders-sink",
//	    xbreaker.WithTripPolicy(xbreaker.NewConsecutiveFailures(3)),
//	    xbreaker.WithTimeout(time.Minute),
//	)
//	err := breaker.Do(ctx, func() error { return runCycle(ctx) })
//	if xbreaker.IsOpen(err) {
//	    // 跳过本周期
//	}
//
// 熔断器错误实现 Retryable() == false，与 xretry 组合时不会被重试。
//
// [sony/gobreaker/v2]: https://github.com/sony/gobreaker
package xbreaker
