package dialogue

import (
	"strings"

	"order-chatbot/internal/textnorm"
)

// PaymentKeywords are checked in this order when scanning a message.
var PaymentKeywords = []string{"yape", "tarjeta", "efectivo", "transferencia"}

// Slots holds the order details collected so far in one conversation.
type Slots map[Category]string

func (s Slots) Get(c Category) (string, bool) {
	v, ok := s[c]
	return v, ok && v != ""
}

func (s Slots) Has(c Category) bool {
	_, ok := s.Get(c)
	return ok
}

func (s Slots) Empty() bool {
	return len(s) == 0
}

// Clone returns an independent, non-nil copy.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// AwaitingPayment is true once a product is known but no payment method.
func (s Slots) AwaitingPayment() bool {
	return s.Has(CategoryProduct) && !s.Has(CategoryPaymentMethod)
}

// Merge folds the turn's entities into s and returns s.
//
// A product entity whose text is a payment keyword is dropped while a
// payment method is pending, so "yape" cannot overwrite "camisa". If no
// payment method is set afterwards, the message itself is scanned for the
// first payment keyword. Unrecognized entities never enter the slots.
func (s Slots) Merge(entities []Entity, message string) Slots {
	awaiting := s.AwaitingPayment()
	for _, e := range entities {
		if !e.Known() {
			continue
		}
		if awaiting && e.Category == CategoryProduct && isPaymentKeyword(e.Text) {
			continue
		}
		s[e.Category] = e.Text
	}

	if !s.Has(CategoryPaymentMethod) {
		if kw, ok := FindPaymentKeyword(message); ok {
			s[CategoryPaymentMethod] = kw
		}
	}
	return s
}

func isPaymentKeyword(text string) bool {
	t := textnorm.Lower(text)
	for _, kw := range PaymentKeywords {
		if t == kw {
			return true
		}
	}
	return false
}

// FindPaymentKeyword returns the first payment keyword, in list order,
// contained in message.
func FindPaymentKeyword(message string) (string, bool) {
	m := textnorm.Lower(message)
	for _, kw := range PaymentKeywords {
		if strings.Contains(m, kw) {
			return kw, true
		}
	}
	return "", false
}
