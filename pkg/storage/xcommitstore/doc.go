// Package xcommitstore 提供基于 Redis 的待提交事务存储。
//
// [Store] 实现 xkafkasink.Store 和 xkafkasink.Locker：
//   - 每个 sink 使用一个 hash，field 为 transactional.id，value 为 xkafkasink 的二进制编码
//   - 同一 transactional.id 同一时刻只有一个未完成事务，新代次覆盖旧记录
//   - Remove 通过 Lua 脚本比较值后删除，周期内写入的新代次不会被误删
//   - Lock 使用 SET NX PX 实现，Unlock 只释放自己持有的锁
//
// 用法：
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store, err := xcommitstore.New(client, "orders")
//	if err != nil {
//	    return err
//	}
//	driver, err := xkafkasink.NewDriver(committer, store,
//	    xkafkasink.WithSink("orders"),
//	    xkafkasink.WithLockTTL(30*time.Second),
//	)
//
// 无法解码的记录不会被删除，Pending 跳过它们并记录错误日志，
// 可以用 xcommitctl pending 命令检查和清理。
package xcommitstore
