// Package mq 提供 Kafka 生产者封装，消息体统一 JSON 序列化
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/optionpricing/pkg/logger"
)

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers []string
}

// KafkaProducer Kafka 生产者
type KafkaProducer struct {
	writer *kafka.Writer
	config KafkaConfig
}

// NewProducer 创建 Kafka 生产者，全副本确认加 Gzip 压缩
func NewProducer(cfg KafkaConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Gzip,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &KafkaProducer{
		writer: writer,
		config: cfg,
	}, nil
}

// SendMessage 发送单条消息，value 非字节类型时按 JSON 序列化
func (kp *KafkaProducer) SendMessage(ctx context.Context, topic string, key string, value interface{}) error {
	var payload []byte
	switch v := value.(type) {
	case []byte:
		payload = v
	case json.RawMessage:
		payload = v
	case string:
		payload = []byte(v)
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal kafka message: %w", err)
		}
		payload = data
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error(ctx, "Kafka send failed", "topic", topic, "key", key, "error", err)
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

// Close 关闭生产者
func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}
