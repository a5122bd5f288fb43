// Package xmetrics 提供统一的可观测性接口（metrics + tracing）。
//
// xmetrics 仅定义最小化接口：Observer/Span/Attr，业务代码只依赖接口。
// 默认实现基于 OpenTelemetry。
//
// # 使用示例
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xkafkasink",
//		Operation: "commit",
//		Kind:      xmetrics.KindProducer,
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// 单个事务的提交结果通过 [RecordOutcome] 计数：
//
//	xmetrics.RecordOutcome(ctx, obs, "xkafkasink", "abandoned", 1)
//
// # 指标命名
//
//   - xcommit.operation.total    (component / operation / status)
//   - xcommit.operation.duration (component / operation / status)
//   - xcommit.transaction.outcome (component / outcome)
package xmetrics
