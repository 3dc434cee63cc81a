package answerfaq

import (
	"context"
	"errors"
	"fmt"

	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/dialogue"
	"order-chatbot/internal/store"
	"order-chatbot/internal/textnorm"
)

const (
	Action = "answer-faq"

	ReplyMenu     = "Tengo respuestas a preguntas sobre horarios, envíos, devoluciones, garantía y métodos de pago. ¿Sobre qué te gustaría saber?"
	ReplyNoAnswer = "No encontré una respuesta específica sobre '%s'. Puedo ayudarte con temas como horarios, envíos, devoluciones, garantía o métodos de pago."
)

type Handler struct {
	faq    store.FAQFinder
	logger logger.Logger
}

func NewHandler(faq store.FAQFinder, log logger.Logger) *Handler {
	return &Handler{
		faq:    faq,
		logger: log.WithFields(map[string]interface{}{"action": Action}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	topic, ok := dialogue.FirstText(input.Entities, dialogue.CategoryFAQTopic)
	if !ok {
		return &Output{Reply: ReplyMenu, Outcome: dialogue.OutcomeMenu}, nil
	}

	normalized := textnorm.NormalizeTopicKeyword(topic)
	answer, err := h.faq.FindFAQAnswer(ctx, normalized)
	if errors.Is(err, store.ErrFAQNotFound) {
		h.logger.Info("no faq answer", map[string]interface{}{
			"topic":      topic,
			"normalized": normalized,
		})
		return &Output{
			Reply:      fmt.Sprintf(ReplyNoAnswer, topic),
			Topic:      topic,
			Normalized: normalized,
			Outcome:    dialogue.OutcomeNotFound,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Output{
		Reply:      answer,
		Topic:      topic,
		Normalized: normalized,
		Outcome:    dialogue.OutcomeCompleted,
	}, nil
}
