package mq

import (
	"fmt"

	"VidTube.com/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// URL 由配置拼出 amqp 地址
func URL() string {
	c := config.ConfigInfo.RabbitMq
	return fmt.Sprintf("amqp://%s:%s@%s/", c.Username, c.Password, c.Addr)
}

// Init 未启用或连接失败时退化为 NopProducer，事件发布不影响主流程
func Init() (MessageProducer, func() error) {
	if !config.ConfigInfo.RabbitMq.Enabled {
		return NopProducer{}, func() error { return nil }
	}
	p, err := NewProducer(URL())
	if err != nil {
		hlog.Errorf("Failed to init rabbitmq producer, events disabled: %v", err)
		return NopProducer{}, func() error { return nil }
	}
	return p, p.Close
}
