package createorder

import (
	"context"
	"fmt"
	"math"

	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/dialogue"
	"order-chatbot/internal/events"
	"order-chatbot/internal/textnorm"
)

const (
	Action = "create-order"

	defaultQuantity = "1"
	// pedidos.cantidad is a positive INTEGER.
	maxQuantity = math.MaxInt32

	ReplyMissingProduct = "No entendí qué producto deseas. Por favor, sé más específico."
	ReplyInvalidQty     = "No pude interpretar '%s' como una cantidad válida."
	ReplyMissingPayment = "Por favor, especifica un método de pago (ej. tarjeta, yape, efectivo)."
	ReplyCreated        = "¡Perfecto! He creado tu pedido de %d %s con %s. Tu número de pedido es %d."
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, product string, quantity int, paymentMethod string) (int64, error)
}

type Handler struct {
	store  OrderCreator
	events events.Publisher
	logger logger.Logger
}

func NewHandler(store OrderCreator, pub events.Publisher, log logger.Logger) *Handler {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Handler{
		store:  store,
		events: pub,
		logger: log.WithFields(map[string]interface{}{"action": Action}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// execute collects product, quantity and payment method across turns and
// commits the order once all three are known.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	slots := input.Slots.Clone().Merge(input.Entities, input.Message)

	product, hasProduct := slots.Get(dialogue.CategoryProduct)
	qtyText, ok := slots.Get(dialogue.CategoryQuantity)
	if !ok {
		qtyText = defaultQuantity
	}
	method, hasMethod := slots.Get(dialogue.CategoryPaymentMethod)

	if !hasProduct {
		return &Output{Reply: ReplyMissingProduct, Slots: slots, Outcome: dialogue.OutcomeNeedsInput}, nil
	}

	qty, ok := textnorm.ParseQuantity(qtyText)
	if !ok || qty < 1 || qty > maxQuantity {
		h.logger.Info("unparseable quantity", map[string]interface{}{
			"error": apperrors.NewInvalidQuantityError(qtyText).Details,
		})
		return &Output{
			Reply:   fmt.Sprintf(ReplyInvalidQty, qtyText),
			Slots:   slots,
			Outcome: dialogue.OutcomeInvalidInput,
		}, nil
	}

	if !hasMethod {
		return &Output{Reply: ReplyMissingPayment, Slots: slots, Outcome: dialogue.OutcomeNeedsInput}, nil
	}

	id, err := h.store.CreateOrder(ctx, product, qty, method)
	if err != nil {
		return nil, apperrors.NewOrderCreateFailedError(err)
	}

	h.logger.Info("order committed", map[string]interface{}{
		"orderId":       id,
		"product":       product,
		"quantity":      qty,
		"paymentMethod": method,
	})

	if err := h.events.Publish(ctx, events.OrderEvent{
		Type:           events.TypeOrderCreated,
		OrderID:        id,
		Product:        product,
		Quantity:       qty,
		PaymentMethod:  method,
		ConversationID: input.ConversationID,
	}); err != nil {
		h.logger.Warn("order event not delivered", map[string]interface{}{"orderId": id, "error": err.Error()})
	}

	return &Output{
		Reply:   fmt.Sprintf(ReplyCreated, qty, product, method, id),
		Slots:   dialogue.Slots{},
		OrderID: id,
		Outcome: dialogue.OutcomeCompleted,
	}, nil
}
