// Package mq 提供消息队列相关的子包。
//
// 子包列表：
//   - xkafka: Kafka 事务 producer 封装（confluent-kafka-go 活句柄、franz-go 恢复 producer）和错误分类
//   - xkafkasink: 两阶段提交 sink 的提交协调者（Committer）和周期驱动（Driver）
//
// 内部包：
//   - internal/mqcore: 共享的事务错误分类和追踪头传播
//
// 设计原则：
//   - 事务失败按可放弃/可重试/致命三类处理
//   - 内置追踪上下文传播（W3C Trace Context）
//   - 内置可观测性（指标、日志、追踪）
package mq
