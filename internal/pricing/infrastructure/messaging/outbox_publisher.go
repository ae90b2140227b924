// Package messaging 领域事件的 Outbox 发布与 Kafka 转发
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/mq"
)

// Outbox 消息状态
const (
	statusPending = "pending"
	statusSent    = "sent"
	statusFailed  = "failed"
)

// OutboxMessage Outbox 消息表，与业务写入同事务落库
type OutboxMessage struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	EventType string    `gorm:"type:varchar(64);not null"`
	EventKey  string    `gorm:"type:varchar(64);not null"`
	Payload   string    `gorm:"type:json;not null"`
	Status    string    `gorm:"type:varchar(16);not null;default:pending;index"`
	Retries   int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	SentAt    *time.Time
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "pricing_outbox_messages"
}

// OutboxPublisher domain.EventPublisher 的 Outbox 实现。
// 事件先写库，由 Relay 循环转发到 Kafka，保证与业务状态最终一致。
type OutboxPublisher struct {
	db       *gorm.DB
	producer *mq.KafkaProducer
	topic    string
	metrics  *metrics.Metrics
}

// NewOutboxPublisher 创建 Outbox 发布器，metrics 可为 nil
func NewOutboxPublisher(db *gorm.DB, producer *mq.KafkaProducer, topic string, m *metrics.Metrics) *OutboxPublisher {
	return &OutboxPublisher{db: db, producer: producer, topic: topic, metrics: m}
}

func newOutboxMessage(eventType, key string, payload any) (*OutboxMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return &OutboxMessage{
		ID:        uuid.New().String(),
		EventType: eventType,
		EventKey:  key,
		Payload:   string(data),
		Status:    statusPending,
		CreatedAt: time.Now(),
	}, nil
}

// Publish 在独立事务内写入 Outbox
func (p *OutboxPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	msg, err := newOutboxMessage(eventType, key, payload)
	if err != nil {
		return err
	}
	return p.db.WithContext(ctx).Create(msg).Error
}

// PublishInTx 在调用方事务内写入 Outbox，tx 必须是 *gorm.DB
func (p *OutboxPublisher) PublishInTx(ctx context.Context, tx any, eventType, key string, payload any) error {
	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return errors.New("outbox publisher requires a *gorm.DB transaction")
	}
	msg, err := newOutboxMessage(eventType, key, payload)
	if err != nil {
		return err
	}
	return gormTx.WithContext(ctx).Create(msg).Error
}

// ProcessOutboxMessages 转发一批待发送消息，返回成功条数
func (p *OutboxPublisher) ProcessOutboxMessages(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	var messages []OutboxMessage
	err := p.db.WithContext(ctx).
		Where("status = ?", statusPending).
		Order("created_at").
		Limit(batchSize).
		Find(&messages).Error
	if err != nil {
		return 0, fmt.Errorf("load outbox messages: %w", err)
	}

	sent := 0
	for i := range messages {
		msg := &messages[i]
		if err := p.producer.SendMessage(ctx, p.topic, msg.EventKey, json.RawMessage(msg.Payload)); err != nil {
			logger.Warn(ctx, "outbox relay failed", "message_id", msg.ID, "event_type", msg.EventType, "error", err)
			p.db.WithContext(ctx).Model(msg).Updates(map[string]any{
				"status":  statusFailed,
				"retries": gorm.Expr("retries + 1"),
			})
			continue
		}

		now := time.Now()
		if err := p.db.WithContext(ctx).Model(msg).Updates(map[string]any{
			"status":  statusSent,
			"sent_at": &now,
		}).Error; err != nil {
			logger.Error(ctx, "mark outbox message sent failed", "message_id", msg.ID, "error", err)
			continue
		}
		sent++
	}

	if sent > 0 && p.metrics != nil {
		p.metrics.OutboxRelayed.Add(float64(sent))
	}
	return sent, nil
}

// RetryFailedMessages 把失败消息重置为待发送，交由下一轮转发
func (p *OutboxPublisher) RetryFailedMessages(ctx context.Context, maxRetries int) error {
	return p.db.WithContext(ctx).
		Model(&OutboxMessage{}).
		Where("status = ? AND retries < ?", statusFailed, maxRetries).
		Update("status", statusPending).Error
}

// StartRelay 周期性转发 Outbox 消息，直到 ctx 取消
func (p *OutboxPublisher) StartRelay(ctx context.Context, interval time.Duration, batchSize int) error {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info(ctx, "outbox relay started", "interval", interval, "batch_size", batchSize)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "outbox relay stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.ProcessOutboxMessages(ctx, batchSize); err != nil {
				logger.Error(ctx, "outbox relay iteration failed", "error", err)
			}
		}
	}
}
