package domain

import "context"

// EventPublisher 领域事件发布接口。
// PublishInTx 要求事件写入与业务写入处于同一事务（Outbox 模式），
// 由基础设施层的发布器负责事后投递。
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	PublishInTx(ctx context.Context, tx any, eventType, key string, payload any) error
}
