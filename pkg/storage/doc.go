// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xcommitstore: 基于 Redis hash 的待提交事务存储，附带周期锁
//
// 设计原则：
//   - 实现上层包定义的小接口，不反向依赖具体调用方
//   - 内置可观测性（指标、追踪）
package storage
