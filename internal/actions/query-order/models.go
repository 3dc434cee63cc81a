package queryorder

import "order-chatbot/internal/dialogue"

type Input struct {
	Entities []dialogue.Entity
}

type Output struct {
	Reply   string
	OrderID int64
	Status  string
	Outcome dialogue.Outcome
}
