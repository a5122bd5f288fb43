// Package xconf 基于 koanf 的配置加载。
//
// 支持 YAML 与 JSON，按扩展名识别格式；也可从字节数据加载（K8s ConfigMap 挂载等场景）。
//
//	cfg, err := xconf.New("/etc/xcommit/xcommitctl.yaml",
//	    xconf.WithDefaults(map[string]any{
//	        "sink.transaction_timeout": "60s",
//	    }),
//	    xconf.WithEnvPrefix("XCOMMIT_"), // XCOMMIT_REDIS__ADDR 覆盖 redis.addr
//	)
//	if err != nil {
//	    return err
//	}
//	var app AppConfig
//	if err := cfg.Unmarshal("", &app); err != nil {
//	    return err
//	}
//	props := cfg.StringMap("kafka") // 透传给 Kafka 客户端的属性
//
// 基础操作可直接使用 Client() 返回的 *koanf.Koanf。
package xconf
