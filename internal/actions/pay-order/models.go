package payorder

import "order-chatbot/internal/dialogue"

type Input struct {
	ConversationID string
	Entities       []dialogue.Entity
}

type Output struct {
	Reply   string
	OrderID int64
	Outcome dialogue.Outcome
}
