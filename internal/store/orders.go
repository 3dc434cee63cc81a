// Package store reads and writes orders and FAQ answers.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"order-chatbot/internal/common/database"
	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/common/metrics"
)

// Order statuses as stored in pedidos.estado.
const (
	StatusPending = "Pendiente"
	StatusPaid    = "Pagado"
)

// Lookup misses match these through errors.Is and carry the NOT_FOUND codes.
var (
	ErrOrderNotFound = apperrors.NewOrderNotFoundError("")
	ErrFAQNotFound   = apperrors.NewFAQNotFoundError("")
	ErrNoRowsUpdated = errors.New("NO_ROWS_UPDATED")
)

// OrderStatus is the part of an order the dialogue reports back.
type OrderStatus struct {
	Status  string
	Product string
}

type OrderStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewOrderStore(db *database.PostgresClient, log logger.Logger) *OrderStore {
	return &OrderStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "order-store"}),
	}
}

// CreateOrder inserts a pending order and returns its id.
func (s *OrderStore) CreateOrder(ctx context.Context, product string, quantity int, paymentMethod string) (int64, error) {
	defer observe("create_order", time.Now())

	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO pedidos (producto, cantidad, metodo_pago) VALUES ($1, $2, $3) RETURNING id`,
		product, quantity, paymentMethod,
	).Scan(&id)
	if err != nil {
		return 0, failure(s.logger, "create_order", err)
	}

	s.logger.Info("order created", map[string]interface{}{
		"orderId":  id,
		"product":  product,
		"quantity": quantity,
	})
	return id, nil
}

// GetOrderStatus returns ErrOrderNotFound for an unknown id.
func (s *OrderStore) GetOrderStatus(ctx context.Context, id int64) (*OrderStatus, error) {
	defer observe("get_order_status", time.Now())

	var st OrderStatus
	err := s.db.QueryRow(ctx,
		`SELECT estado, producto FROM pedidos WHERE id = $1`,
		id,
	).Scan(&st.Status, &st.Product)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewOrderNotFoundError(strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, failure(s.logger, "get_order_status", err)
	}
	return &st, nil
}

// MarkOrderPaid flips a pending order to paid. An update that touches no
// row reports ErrNoRowsUpdated.
func (s *OrderStore) MarkOrderPaid(ctx context.Context, id int64) error {
	defer observe("mark_order_paid", time.Now())

	res, err := s.db.Exec(ctx,
		`UPDATE pedidos SET estado = $1 WHERE id = $2 AND estado <> $1`,
		StatusPaid, id,
	)
	if err != nil {
		return failure(s.logger, "mark_order_paid", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return failure(s.logger, "mark_order_paid", err)
	}
	if n == 0 {
		metrics.StoreOperationFailures.WithLabelValues("mark_order_paid").Inc()
		return fmt.Errorf("%w: order %d", ErrNoRowsUpdated, id)
	}
	return nil
}

// failure records a driver error and wraps it as STORE_UNAVAILABLE.
func failure(log logger.Logger, op string, err error) error {
	metrics.StoreOperationFailures.WithLabelValues(op).Inc()
	log.Error("store operation failed", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
	return apperrors.NewStoreUnavailableError(op, err)
}

func observe(op string, start time.Time) {
	metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
