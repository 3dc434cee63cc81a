package queryorder

import (
	"context"
	"errors"
	"testing"

	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/dialogue"
	"order-chatbot/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	orders map[int64]store.OrderStatus
	err    error
	asked  []int64
}

func (f *fakeStore) GetOrderStatus(_ context.Context, id int64) (*store.OrderStatus, error) {
	f.asked = append(f.asked, id)
	if f.err != nil {
		return nil, f.err
	}
	st, ok := f.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	return &st, nil
}

func TestHandler_Execute(t *testing.T) {
	orders := map[int64]store.OrderStatus{
		123: {Status: store.StatusPending, Product: "camisa"},
		5:   {Status: store.StatusPaid, Product: "gorra"},
	}

	tests := []struct {
		name        string
		entities    []dialogue.Entity
		wantReply   string
		wantOutcome dialogue.Outcome
		wantAsked   []int64
	}{
		{
			name:        "id buried in text",
			entities:    []dialogue.Entity{dialogue.NewEntity("IdPedido", "pedido #abc123")},
			wantReply:   "El estado de tu pedido #123 (camisa) es: Pendiente.",
			wantOutcome: dialogue.OutcomeCompleted,
			wantAsked:   []int64{123},
		},
		{
			name:        "paid order",
			entities:    []dialogue.Entity{dialogue.NewEntity("IdPedido", "5")},
			wantReply:   "El estado de tu pedido #5 (gorra) es: Pagado.",
			wantOutcome: dialogue.OutcomeCompleted,
			wantAsked:   []int64{5},
		},
		{
			name:        "no id",
			entities:    nil,
			wantReply:   ReplyMissingID,
			wantOutcome: dialogue.OutcomeNeedsInput,
		},
		{
			name:        "id without digits",
			entities:    []dialogue.Entity{dialogue.NewEntity("IdPedido", "el de ayer")},
			wantReply:   ReplyMissingID,
			wantOutcome: dialogue.OutcomeNeedsInput,
		},
		{
			name:        "unknown id",
			entities:    []dialogue.Entity{dialogue.NewEntity("IdPedido", "#77")},
			wantReply:   "No pude encontrar el pedido con el ID 77.",
			wantOutcome: dialogue.OutcomeNotFound,
			wantAsked:   []int64{77},
		},
		{
			name:        "id too large never reaches the store",
			entities:    []dialogue.Entity{dialogue.NewEntity("IdPedido", "123456789012345678901234")},
			wantReply:   "No pude encontrar el pedido con el ID 123456789012345678901234.",
			wantOutcome: dialogue.OutcomeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeStore{orders: orders}
			h := NewHandler(fs, logger.NewTestLogger(t))

			out, err := h.Execute(context.Background(), &Input{Entities: tt.entities})
			require.NoError(t, err)
			assert.Equal(t, tt.wantReply, out.Reply)
			assert.Equal(t, tt.wantOutcome, out.Outcome)
			assert.Equal(t, tt.wantAsked, fs.asked)
		})
	}
}

func TestHandler_StoreUnavailable(t *testing.T) {
	fs := &fakeStore{err: apperrors.NewStoreUnavailableError("get_order_status", errors.New("timeout"))}
	h := NewHandler(fs, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Entities: []dialogue.Entity{dialogue.NewEntity("IdPedido", "1")}})
	assert.Nil(t, out)
	assert.Equal(t, apperrors.KindUpstreamUnavailable, apperrors.GetErrorKind(apperrors.CodeOf(err)))
}
