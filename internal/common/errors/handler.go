package errors

// Fallback replies. Users never see raw errors.
const (
	ReplyNotUnderstood    = "Lo siento, no entendí eso."
	ReplyOrderCreateError = "Lo siento, hubo un problema al crear tu pedido."
	ReplyOrderPayError    = "Lo siento, no pude registrar el pago de tu pedido. Por favor, inténtalo de nuevo más tarde."
	ReplyStoreError       = "Lo siento, no puedo consultar la información en este momento. Por favor, inténtalo de nuevo más tarde."
	ReplyInternalError    = "Lo siento, ocurrió un error inesperado. Por favor, inténtalo de nuevo."
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ReplyHandler turns errors raised while processing a turn into the
// user-facing fallback reply for their code.
type ReplyHandler struct {
	logger Logger
}

func NewReplyHandler(logger Logger) *ReplyHandler {
	return &ReplyHandler{logger: logger}
}

// Handle logs err and returns the reply to send instead.
func (h *ReplyHandler) Handle(err error, fields map[string]interface{}) string {
	stdErr := AsStandardError(err)
	h.logError(stdErr, fields)
	return FallbackReply(stdErr.Code)
}

// FallbackReply returns the fixed reply for an error code.
func FallbackReply(code ErrorCode) string {
	switch code {
	case ErrCodeNLUUnavailable, ErrCodeNLUTimeout:
		return ReplyNotUnderstood
	case ErrCodeOrderCreateFailed:
		return ReplyOrderCreateError
	case ErrCodeOrderPaymentFailed:
		return ReplyOrderPayError
	case ErrCodeStoreUnavailable, ErrCodeSessionStoreFailed:
		return ReplyStoreError
	default:
		return ReplyInternalError
	}
}

func (h *ReplyHandler) logError(stdErr *StandardError, fields map[string]interface{}) {
	if h.logger == nil {
		return
	}
	out := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"errorKind": string(stdErr.Kind()),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	}
	for k, v := range stdErr.Metadata {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	h.logger.Error("turn failed", out)
}
