// Package context 提供上下文相关的子包。
//
// 子包列表：
//   - xctx: Context 增强，注入/提取追踪信息和提交周期信息（checkpoint、sink、cycle）
//
// 设计原则：
//   - 所有上下文信息通过 context.Context 传递，不使用全局变量
//   - 支持 W3C Trace Context 标准
package context
