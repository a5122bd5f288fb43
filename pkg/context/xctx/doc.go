// Package xctx 提供轻量级的提交上下文管理。
//
// 整合追踪信息（trace）和提交周期信息（commit）的 context 存取能力，
// 并为日志系统提供属性提取功能。
//
// # 核心功能
//
// 追踪信息（Trace）- 分布式追踪：
//   - trace_id     : 追踪标识（W3C 规范，128-bit）
//   - span_id      : 跨度标识（W3C 规范，64-bit）
//   - trace_flags  : 追踪标志（W3C 规范，采样决策）
//
// 提交周期信息（Commit）- 标识一次 checkpoint 提交：
//   - sink          : sink 名称（一个 sink 对应一组 transactional.id）
//   - checkpoint_id : 触发本次提交的 checkpoint 编号
//   - cycle_id      : 本次提交周期的唯一标识（UUID）
//
// # 命名约定
//
//	WithXxx(ctx, value)    - 注入：将 value 写入 context
//	Xxx(ctx)               - 读取：从 context 读取值，缺失时返回零值
//	EnsureXxx(ctx)         - 确保存在：若已存在则返回，否则自动生成
//
// # 校验策略
//
// xctx 只负责存取，除 checkpoint_id 不得为负外不校验字段格式（如 trace_id 的长度）。
package xctx
