// Package logsink はブローカー未設定時にドメインイベントをログへ出力する Publisher です。
package logsink

import (
	"context"

	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/core/event"
)

// Publisher はイベントを Info レベルで記録します。
type Publisher struct {
	logger *zap.Logger
}

// New は Publisher を生成します。
func New(logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{logger: logger.Named("events")}
}

// Publish はイベントをログに出力します。失敗しません。
func (p *Publisher) Publish(_ context.Context, e event.Event) error {
	fields := []zap.Field{
		zap.String("event_id", e.ID),
		zap.String("type", string(e.Type)),
		zap.String("contract_id", e.ContractID),
		zap.Time("occurred_at", e.OccurredAt),
	}
	if e.ActorID != "" {
		fields = append(fields, zap.String("actor_id", e.ActorID))
	}
	if len(e.Attributes) > 0 {
		fields = append(fields, zap.Any("attributes", e.Attributes))
	}
	p.logger.Info("domain event", fields...)
	return nil
}
