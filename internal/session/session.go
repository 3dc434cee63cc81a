// Package session keeps each conversation's order slots between turns.
package session

import (
	"context"

	"order-chatbot/internal/dialogue"
)

// Store is keyed by conversation id. Load of an unknown id returns empty
// slots. Saving empty slots is the same as Clear.
type Store interface {
	Load(ctx context.Context, conversationID string) (dialogue.Slots, error)
	Save(ctx context.Context, conversationID string, slots dialogue.Slots) error
	Clear(ctx context.Context, conversationID string) error
}
