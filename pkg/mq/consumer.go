package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

type CascadeEventHandler interface {
	HandleCascadeEvent(ctx context.Context, event *CascadeEvent) error
}

func NewConsumer(rabbitmqURL string) (*Consumer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// 设置QoS，限制未确认消息数量
	err = ch.Qos(
		10,    // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}

	return &Consumer{conn: conn, channel: ch}, nil
}

// ConsumeCascadeEvents 阻塞消费级联事件直到 ctx 结束或通道关闭
func (c *Consumer) ConsumeCascadeEvents(ctx context.Context, handler CascadeEventHandler) error {
	msgs, err := c.channel.Consume(
		CascadeEventQueue,
		"",    // consumer
		false, // auto-ack (设置为false，手动确认)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			hlog.Info("Cascade event consumer context cancelled")
			return nil
		case d, ok := <-msgs:
			if !ok {
				hlog.Info("Cascade event consumer channel closed")
				return nil
			}

			var event CascadeEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				hlog.Errorf("Failed to unmarshal cascade event: %v", err)
				d.Nack(false, false) // 拒绝消息，不重新入队
				continue
			}

			if err := handler.HandleCascadeEvent(ctx, &event); err != nil {
				hlog.Errorf("Failed to handle cascade event: %v", err)
				d.Nack(false, true) // 拒绝消息，重新入队
				continue
			}

			d.Ack(false) // 确认消息
			hlog.CtxInfof(ctx, "Successfully processed cascade event: %s %s/%s", event.Status, event.RootKind, event.RootID)
		}
	}
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
