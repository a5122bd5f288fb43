// Package xkafkasink 实现 exactly-once Kafka sink 的提交阶段。
//
// 写入阶段为每个事务生成一个 [Committable]（transactional.id、producerId、epoch，
// 以及同进程时借出的事务 producer）。checkpoint 完成后，[Committer] 对这批
// committable 逐个提交并分类结果：
//   - 提交成功：归还活句柄
//   - 事务状态无效（通常已被 broker 超时中止）：放弃，记录 warn 日志，归还活句柄
//   - producer 被隔离：放弃，记录包含事务超时配置的 warn 日志，归还活句柄
//   - 其他失败：原样放入重试集合，不归还活句柄
//
// 只有周期级故障（恢复 producer 无法创建、分类为致命的错误、ctx 被取消）会作为错误返回，
// 此时当前和所有未处理的 committable 都在重试集合中，调用方不会丢失任何事务。
//
// # 恢复 producer
//
// 没有活句柄的 committable（进程重启后从持久化状态恢复）通过恢复 producer 提交。
// Committer 首次需要时创建一个，之后原地换绑 transactional.id，
// 每次提交前都以 committable 的 producerId/epoch 恢复事务。
// Close 时关闭恢复 producer（如果创建过）。
//
// # Driver
//
// [Driver] 是提交周期的调用方：从 [Store] 读取待提交集合，调用 Committer，
// 删除已解决的记录。它负责重试次数策略（xretry）、连续失败熔断（xbreaker）
// 和多实例互斥（Store 实现 [Locker] 时）。
//
// # 序列化
//
// [EncodeCommittable]/[DecodeCommittable] 提供带版本号的二进制格式，
// [EncodeCommittablesJSON]/[DecodeCommittablesJSON] 提供 CLI 使用的 JSON 格式。
// 活句柄不参与序列化。
//
// # 并发安全
//
// Committer 和 Driver 的所有方法都可以并发调用，但提交周期内部串行执行，
// 恢复 producer 同一时刻只绑定一个 transactional.id。
package xkafkasink

//go:generate mockgen -destination=mock_producer_test.go -package=xkafkasink github.com/omeyang/xcommit/pkg/mq/xkafka TxnProducer,RecoveryProducer
//go:generate mockgen -destination=mock_driver_test.go -package=xkafkasink -source=driver.go
