package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

type ErrorCode string

const (
	// Upstream collaborators
	ErrCodeNLUUnavailable     ErrorCode = "NLU_UNAVAILABLE"
	ErrCodeNLUTimeout         ErrorCode = "NLU_TIMEOUT"
	ErrCodeStoreUnavailable   ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeOrderCreateFailed  ErrorCode = "ORDER_CREATE_FAILED"
	ErrCodeOrderPaymentFailed ErrorCode = "ORDER_PAYMENT_FAILED"
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeEventPublishFailed ErrorCode = "EVENT_PUBLISH_FAILED"

	// User input
	ErrCodeInvalidQuantity ErrorCode = "INVALID_QUANTITY"
	ErrCodeInvalidOrderID  ErrorCode = "INVALID_ORDER_ID"

	// Lookups
	ErrCodeOrderNotFound ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeFAQNotFound   ErrorCode = "FAQ_NOT_FOUND"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Kind groups error codes by how the dialogue recovers from them.
type Kind string

const (
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindUnparseableInput    Kind = "unparseable_input"
	KindNotFound            Kind = "not_found"
	KindInternal            Kind = "internal"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code, so a code-only
// sentinel compares equal to an error built with details.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code == e.Code
}

// Kind classifies the error code.
func (e *StandardError) Kind() Kind {
	return GetErrorKind(e.Code)
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewNLUUnavailableError(err error) *StandardError {
	return newError(ErrCodeNLUUnavailable, "Language understanding service unavailable", err, true)
}

func NewNLUTimeoutError(err error) *StandardError {
	return newError(ErrCodeNLUTimeout, "Language understanding service timeout", err, true)
}

func NewStoreUnavailableError(operation string, err error) *StandardError {
	e := newError(ErrCodeStoreUnavailable, "Order store unavailable", err, true)
	e.Metadata = map[string]interface{}{"operation": operation}
	return e
}

func NewOrderCreateFailedError(err error) *StandardError {
	return newError(ErrCodeOrderCreateFailed, "Order creation failed", err, false)
}

func NewOrderPaymentFailedError(orderID string, err error) *StandardError {
	e := newError(ErrCodeOrderPaymentFailed, "Order payment update failed", err, false)
	e.Metadata = map[string]interface{}{"orderId": orderID}
	return e
}

func NewSessionStoreFailedError(err error) *StandardError {
	return newError(ErrCodeSessionStoreFailed, "Conversation state store unavailable", err, true)
}

func NewEventPublishFailedError(eventType string, err error) *StandardError {
	e := newError(ErrCodeEventPublishFailed, "Order event publish failed", err, true)
	e.Metadata = map[string]interface{}{"eventType": eventType}
	return e
}

func NewInvalidQuantityError(text string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQuantity,
		Message:   "Quantity is not a number",
		Details:   fmt.Sprintf("quantity: %s", text),
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidOrderIDError(text string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidOrderID,
		Message:   "Order id is not a number",
		Details:   fmt.Sprintf("orderId: %s", text),
		Timestamp: time.Now().UTC(),
	}
}

func NewOrderNotFoundError(orderID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderNotFound,
		Message:   "Order not found",
		Details:   fmt.Sprintf("orderId: %s", orderID),
		Timestamp: time.Now().UTC(),
	}
}

func NewFAQNotFoundError(topic string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFAQNotFound,
		Message:   "No FAQ answer for topic",
		Details:   fmt.Sprintf("topic: %s", topic),
		Timestamp: time.Now().UTC(),
	}
}

// GetErrorKind maps a code onto its recovery kind.
func GetErrorKind(code ErrorCode) Kind {
	switch code {
	case ErrCodeNLUUnavailable,
		ErrCodeNLUTimeout,
		ErrCodeStoreUnavailable,
		ErrCodeOrderCreateFailed,
		ErrCodeOrderPaymentFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeEventPublishFailed:
		return KindUpstreamUnavailable
	case ErrCodeInvalidQuantity, ErrCodeInvalidOrderID:
		return KindUnparseableInput
	case ErrCodeOrderNotFound, ErrCodeFAQNotFound:
		return KindNotFound
	default:
		return KindInternal
	}
}

// AsStandardError normalises any error into a StandardError.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err, false)
}

// CodeOf returns the error code of err, or "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return AsStandardError(err).Code
}
