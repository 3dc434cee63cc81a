package queryorder

import (
	"context"
	"errors"
	"fmt"

	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/dialogue"
	"order-chatbot/internal/store"
)

const (
	Action = "query-order"

	ReplyMissingID = "No entendí qué número de pedido quieres consultar."
	ReplyStatus    = "El estado de tu pedido #%s (%s) es: %s."
	ReplyNotFound  = "No pude encontrar el pedido con el ID %s."
)

type StatusReader interface {
	GetOrderStatus(ctx context.Context, id int64) (*store.OrderStatus, error)
}

type Handler struct {
	store  StatusReader
	logger logger.Logger
}

func NewHandler(store StatusReader, log logger.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"action": Action}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

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
		return &Output{
			Reply:   fmt.Sprintf(ReplyNotFound, digits),
			OrderID: id,
			Outcome: dialogue.OutcomeNotFound,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Output{
		Reply:   fmt.Sprintf(ReplyStatus, digits, st.Product, st.Status),
		OrderID: id,
		Status:  st.Status,
		Outcome: dialogue.OutcomeCompleted,
	}, nil
}
