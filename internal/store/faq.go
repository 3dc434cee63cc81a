package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"order-chatbot/internal/common/database"
	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"
)

// FAQFinder looks up the stored answer whose keyword contains topic,
// ignoring case and accents.
type FAQFinder interface {
	FindFAQAnswer(ctx context.Context, topic string) (string, error)
}

type FAQStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewFAQStore(db *database.PostgresClient, log logger.Logger) *FAQStore {
	return &FAQStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "faq-store"}),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes topic match literally inside a LIKE pattern.
func escapeLike(topic string) string {
	return likeEscaper.Replace(topic)
}

func (s *FAQStore) FindFAQAnswer(ctx context.Context, topic string) (string, error) {
	defer observe("find_faq_answer", time.Now())

	var answer string
	err := s.db.QueryRow(ctx,
		`SELECT respuesta FROM preguntas_frecuentes
		 WHERE unaccent(lower(palabra_clave)) LIKE '%' || unaccent(lower($1)) || '%' ESCAPE '\'
		 ORDER BY id
		 LIMIT 1`,
		escapeLike(topic),
	).Scan(&answer)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.NewFAQNotFoundError(topic)
	}
	if err != nil {
		return "", failure(s.logger, "find_faq_answer", err)
	}
	return answer, nil
}

// FAQEntry is one row of preguntas_frecuentes.
type FAQEntry struct {
	Keyword string
	Answer  string
}

// ListEntries returns every FAQ row, ordered by id.
func (s *FAQStore) ListEntries(ctx context.Context) ([]FAQEntry, error) {
	rows, err := s.db.Query(ctx, `SELECT palabra_clave, respuesta FROM preguntas_frecuentes ORDER BY id`)
	if err != nil {
		return nil, failure(s.logger, "list_faq_entries", err)
	}
	defer rows.Close()

	var out []FAQEntry
	for rows.Next() {
		var e FAQEntry
		if err := rows.Scan(&e.Keyword, &e.Answer); err != nil {
			return nil, failure(s.logger, "list_faq_entries", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, failure(s.logger, "list_faq_entries", err)
	}
	return out, nil
}
