// Package xkafka 提供事务提交所需的 Kafka 客户端封装。
//
// 本包包含两类客户端：
//   - [TxnProducer]：基于 confluent-kafka-go 的事务型 producer，写入阶段使用，
//     在提交阶段作为"活句柄"直接 CommitTransaction
//   - [ResumableProducer]：基于 franz-go 的恢复 producer，可按
//     (transactional.id, producerId, epoch) 恢复一个已预提交的事务并完成提交
//
// # 恢复提交
//
// 恢复 producer 不设置 kgo.TransactionalID，因此不会发送 InitProducerID，
// 也就不会提升 epoch 而把待提交事务隔离掉。提交直接发送 EndTxn 请求，
// kgo 负责把请求路由到该 transactional.id 的事务协调者。
//
// 设计决策: 恢复 producer 在进程内只保留一个，通过 SetTransactionalID 原地换绑，
// 避免为每个待恢复事务建立一组 broker 连接。
//
// # 错误分类
//
// [ClassifyError] 把两个客户端库的错误码统一映射为 mqcore.TxnErrorKind，
// 提交方只根据分类决定放弃、重试或中止，不依赖具体客户端的错误类型。
//
// # 配置
//
// 两类客户端共用同一份字符串属性（librdkafka 风格，如 bootstrap.servers）。
// [ConfigMap] 转换为 *kafka.ConfigMap，恢复 producer 只识别其中与连接相关的键。
//
// # 并发安全
//
// TxnProducer 的 Health/Stats/Close 可并发调用，Close 之后的调用安全返回 ErrClosed 或零值。
// ResumableProducer 的绑定状态由互斥锁保护，但同一时刻只应有一个提交方使用它。
package xkafka
