package payorder

import (
	"context"
	"errors"
	"fmt"

	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/dialogue"
	"order-chatbot/internal/events"
	"order-chatbot/internal/store"
)

const (
	Action = "pay-order"

	ReplyMissingID   = "Por favor, dime el número del pedido que quieres pagar."
	ReplyNotFound    = "No pude encontrar el pedido con el ID %s."
	ReplyAlreadyPaid = "El pedido #%s ya se encuentra pagado."
	ReplyPaid        = "¡Gracias! Se ha registrado el pago para el pedido #%s."
)

type OrderPayer interface {
	GetOrderStatus(ctx context.Context, id int64) (*store.OrderStatus, error)
	MarkOrderPaid(ctx context.Context, id int64) error
}

type Handler struct {
	store  OrderPayer
	events events.Publisher
	logger logger.Logger
}

func NewHandler(store OrderPayer, pub events.Publisher, log logger.Logger) *Handler {
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

// execute pays a pending order. Paying an order that is already paid is
// reported without touching the store again.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	digits, id, ok := dialogue.OrderIDFrom(input.Entities)
	if digits == "" {
		return &Output{Reply: ReplyMissingID, Outcome: dialogue.OutcomeNeedsInput}, nil
	}
	if !ok {
		h.logger.Info("order id out of range", map[string]interface{}{
			"error": apperrors.NewInvalidOrderIDError(digits).Details,
		})
		return &Output{Reply: fmt.Sprintf(ReplyNotFound, digits), Outcome: dialogue.OutcomeNotFound}, nil
	}

	st, err := h.store.GetOrderStatus(ctx, id)
	if errors.Is(err, store.ErrOrderNotFound) {
		return &Output{Reply: fmt.Sprintf(ReplyNotFound, digits), OrderID: id, Outcome: dialogue.OutcomeNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	if st.Status == store.StatusPaid {
		return &Output{Reply: fmt.Sprintf(ReplyAlreadyPaid, digits), OrderID: id, Outcome: dialogue.OutcomeAlreadyPaid}, nil
	}

	if err := h.store.MarkOrderPaid(ctx, id); err != nil {
		return nil, apperrors.NewOrderPaymentFailedError(digits, err)
	}

	h.logger.Info("order paid", map[string]interface{}{"orderId": id})

	if err := h.events.Publish(ctx, events.OrderEvent{
		Type:           events.TypeOrderPaid,
		OrderID:        id,
		Product:        st.Product,
		ConversationID: input.ConversationID,
	}); err != nil {
		h.logger.Warn("order event not delivered", map[string]interface{}{"orderId": id, "error": err.Error()})
	}

	return &Output{Reply: fmt.Sprintf(ReplyPaid, digits), OrderID: id, Outcome: dialogue.OutcomeCompleted}, nil
}
