package service

import (
	"context"

	evt_model "github.com/RoyceAzure/lab/cartorder/internal/domain/model/event"
)

// EventPublisher 交易 commit 之後發送領域事件
type EventPublisher interface {
	Publish(ctx context.Context, event evt_model.Event) error
}
