// Package mqcore 提供消息队列的共享核心功能。
//
// 本包是 internal 包，仅供 xkafka 和 xkafkasink 包内部使用。
// 外部用户不应直接导入此包。
//
// 依赖策略: 本包作为 MQ 族的共享内核（shared kernel），不依赖任何 broker 客户端。
// xkafka 负责把 confluent-kafka-go / franz-go 的错误码翻译为这里的 TxnErrorKind，
// xkafkasink 只针对 TxnErrorKind 做提交决策，不感知具体客户端实现。
//
// 主要功能：
//   - 共享错误定义（xkafka/xkafkasink 共用）
//   - 事务错误分类：TxnErrorKind 及其哨兵错误
//   - 消息头追踪注入：HeaderInjector
package mqcore
