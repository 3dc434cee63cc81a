// Package events announces order lifecycle changes to other systems.
package events

import (
	"context"
	"time"

	awsclient "order-chatbot/internal/common/aws"
	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"
)

const (
	TypeOrderCreated = "order.created"
	TypeOrderPaid    = "order.paid"
)

type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        int64     `json:"orderId"`
	Product        string    `json:"product,omitempty"`
	Quantity       int       `json:"quantity,omitempty"`
	PaymentMethod  string    `json:"paymentMethod,omitempty"`
	ConversationID string    `json:"conversationId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Publisher delivers order events. Delivery failures never change the
// reply the user gets; callers log and move on.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

type jsonPublisher interface {
	PublishJSON(ctx context.Context, eventType string, body interface{}) (string, error)
}

// SNSPublisher sends events to an SNS topic.
type SNSPublisher struct {
	sns    jsonPublisher
	logger logger.Logger
}

func NewSNSPublisher(sns *awsclient.SNSPublisher, log logger.Logger) *SNSPublisher {
	return newSNSPublisher(sns, log)
}

func newSNSPublisher(sns jsonPublisher, log logger.Logger) *SNSPublisher {
	return &SNSPublisher{
		sns:    sns,
		logger: log.WithFields(map[string]interface{}{"component": "order-events"}),
	}
}

func (p *SNSPublisher) Publish(ctx context.Context, event OrderEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	msgID, err := p.sns.PublishJSON(ctx, event.Type, event)
	if err != nil {
		return apperrors.NewEventPublishFailedError(event.Type, err)
	}
	p.logger.Debug("order event published", map[string]interface{}{
		"eventType": event.Type,
		"orderId":   event.OrderID,
		"messageId": msgID,
	})
	return nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
