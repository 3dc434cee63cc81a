package dialogue

import (
	"strconv"

	"order-chatbot/internal/textnorm"
)

// OrderIDFrom reads the order number out of the first IdPedido entity,
// dropping every non-digit: "pedido #abc123" gives ("123", 123, true).
// digits is empty when no number was given; ok is false when there is
// no number or it does not fit an int64.
func OrderIDFrom(entities []Entity) (digits string, id int64, ok bool) {
	text, found := FirstText(entities, CategoryOrderID)
	if !found {
		return "", 0, false
	}
	digits = textnorm.DigitsOnly(text)
	if digits == "" {
		return "", 0, false
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return digits, 0, false
	}
	return digits, id, true
}
