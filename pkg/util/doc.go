// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xpool: 泛型 Worker Pool 和只归还一次的资源句柄（Recyclable）
package util
