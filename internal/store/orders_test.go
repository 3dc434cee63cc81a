package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"order-chatbot/internal/common/database"
	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*database.PostgresClient, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewPostgresFromDB(db, true, logger.NewTestLogger(t)), mock
}

func TestOrderStore_CreateOrder(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewOrderStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery(`INSERT INTO pedidos \(producto, cantidad, metodo_pago\)`).
		WithArgs("camisa", 2, "yape").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := s.CreateOrder(context.Background(), "camisa", 2, "yape")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStore_CreateOrder_DriverError(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewOrderStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery(`INSERT INTO pedidos`).
		WithArgs("camisa", 1, "efectivo").
		WillReturnError(errors.New("connection refused"))

	_, err := s.CreateOrder(context.Background(), "camisa", 1, "efectivo")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeStoreUnavailable, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStore_GetOrderStatus(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		want    *OrderStatus
		wantErr error
		code    apperrors.ErrorCode
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT estado, producto FROM pedidos WHERE id`).
					WithArgs(int64(7)).
					WillReturnRows(sqlmock.NewRows([]string{"estado", "producto"}).AddRow("Pendiente", "camisa"))
			},
			want: &OrderStatus{Status: StatusPending, Product: "camisa"},
		},
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT estado, producto FROM pedidos WHERE id`).
					WithArgs(int64(7)).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrOrderNotFound,
		},
		{
			name: "driver error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT estado, producto FROM pedidos WHERE id`).
					WithArgs(int64(7)).
					WillReturnError(errors.New("timeout"))
			},
			code: apperrors.ErrCodeStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			s := NewOrderStore(db, logger.NewTestLogger(t))
			tt.setup(mock)

			got, err := s.GetOrderStatus(context.Background(), 7)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, apperrors.KindNotFound, apperrors.AsStandardError(err).Kind())
				assert.Contains(t, apperrors.AsStandardError(err).Details, "7")
			case tt.code != "":
				assert.Equal(t, tt.code, apperrors.CodeOf(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderStore_MarkOrderPaid(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE pedidos SET estado`).
			WithArgs(StatusPaid, int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewOrderStore(db, logger.NewTestLogger(t)).MarkOrderPaid(context.Background(), 9)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row touched", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE pedidos SET estado`).
			WithArgs(StatusPaid, int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewOrderStore(db, logger.NewTestLogger(t)).MarkOrderPaid(context.Background(), 9)
		assert.ErrorIs(t, err, ErrNoRowsUpdated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE pedidos SET estado`).
			WithArgs(StatusPaid, int64(9)).
			WillReturnError(errors.New("deadlock detected"))

		err := NewOrderStore(db, logger.NewTestLogger(t)).MarkOrderPaid(context.Background(), 9)
		assert.Equal(t, apperrors.ErrCodeStoreUnavailable, apperrors.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
