package answerfaq

import "order-chatbot/internal/dialogue"

type Input struct {
	Entities []dialogue.Entity
}

type Output struct {
	Reply      string
	Topic      string
	Normalized string
	Outcome    dialogue.Outcome
}
