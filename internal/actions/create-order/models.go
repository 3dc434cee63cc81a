package createorder

import "order-chatbot/internal/dialogue"

type Input struct {
	ConversationID string
	Slots          dialogue.Slots
	Entities       []dialogue.Entity
	Message        string
}

type Output struct {
	Reply   string
	Slots   dialogue.Slots
	OrderID int64
	Outcome dialogue.Outcome
}
