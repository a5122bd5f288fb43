// Package xpool 提供通用的对象池和作用域借用（Recyclable）实现。
//
// Pool 是一个轻量级的泛型对象池，用于复用创建成本较高的客户端
// （例如绑定了 transactional.id 的 Kafka producer）。
// 支持以下特性：
//   - 泛型对象类型
//   - 借出对象以 [Recyclable] 包装，Close 归还且只归还一次
//   - 可配置的最大空闲数量，超出时直接销毁
//   - 池关闭后归还的对象会被销毁而不是放回池中
//   - 可注入自定义日志记录器（WithLogger）
//   - 多实例场景下可设置名称以区分日志来源（WithName）
//
// # 借用契约
//
// 借用方负责在对象不再需要时调用 Recyclable.Close。
// 同一个 Recyclable 重复 Close 是安全的，只有第一次生效，
// 因此对象永远不会被重复归还。
//
// # 设计选择说明
//
// 设计决策: New 返回 *Pool[T] 而非接口：
//   - xpool 作为轻量级工具包，不需要多实现替换，返回具体类型更简洁
//   - 编译期通过 io.Closer 断言确保关闭契约
package xpool
