// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转）
//   - 自动从 context 注入 trace_id、checkpoint_id、cycle_id 等（EnrichHandler，默认启用）
//   - 动态级别调整（运行时热更新）
//   - 事务提交相关的标准属性（TransactionalID、ProducerID、Epoch、Outcome）
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，Build 返回该错误）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelInfo).
//		SetFormat("json").
//		SetRotation("/var/log/xcommit/commit.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// 不需要输出的场景（测试、库默认值）使用 [Nop]。
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// [ParseLevel] 接受 slog 的写法（含 "info+2" 这样的偏移）和 "warning"。Level 实现 encoding.TextMarshaler/TextUnmarshaler，
// 支持配置文件直接反序列化。
package xlog
