package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"order-chatbot/internal/common/database"
	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/textnorm"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// FAQDocument is one FAQ entry as indexed in Elasticsearch.
type FAQDocument struct {
	Keyword       string `json:"keyword"`
	KeywordFolded string `json:"keyword_folded"`
	Answer        string `json:"answer"`
}

// FAQIndexMapping keeps the folded keyword unanalysed so wildcard
// queries see the whole value.
const FAQIndexMapping = `{
  "mappings": {
    "properties": {
      "keyword":        {"type": "text"},
      "keyword_folded": {"type": "keyword"},
      "answer":         {"type": "text", "index": false}
    }
  }
}`

// FAQSearch answers FAQ lookups from an Elasticsearch index.
type FAQSearch struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewFAQSearch(es *database.ElasticsearchClient, index string, log logger.Logger) *FAQSearch {
	return &FAQSearch{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "faq-search", "index": index}),
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func (s *FAQSearch) FindFAQAnswer(ctx context.Context, topic string) (string, error) {
	defer observe("find_faq_answer", time.Now())

	query := map[string]interface{}{
		"size": 1,
		"sort": []interface{}{"_doc"},
		"query": map[string]interface{}{
			"wildcard": map[string]interface{}{
				"keyword_folded": map[string]interface{}{
					"value": "*" + wildcardEscaper.Replace(textnorm.Fold(topic)) + "*",
				},
			},
		},
		"_source": []string{"answer"},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("marshal faq query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return "", failure(s.logger, "find_faq_answer", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", failure(s.logger, "find_faq_answer", fmt.Errorf("search failed: %s", res.String()))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source FAQDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return "", failure(s.logger, "find_faq_answer", fmt.Errorf("decode search response: %w", err))
	}
	if len(r.Hits.Hits) == 0 {
		return "", apperrors.NewFAQNotFoundError(topic)
	}
	return r.Hits.Hits[0].Source.Answer, nil
}

// EnsureIndex creates the FAQ index with its mapping when missing.
func (s *FAQSearch) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.es.Client)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: s.index,
		Body:  strings.NewReader(FAQIndexMapping),
	}.Do(ctx, s.es.Client)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: %s", res.String())
	}
	return nil
}

// IndexEntries writes entries with their folded keyword as document id,
// so re-running the indexer overwrites instead of duplicating.
func (s *FAQSearch) IndexEntries(ctx context.Context, entries []FAQEntry) (int, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		doc := FAQDocument{
			Keyword:       e.Keyword,
			KeywordFolded: textnorm.Fold(e.Keyword),
			Answer:        e.Answer,
		}
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": s.index, "_id": doc.KeywordFolded},
		}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return 0, err
		}
		if err := json.NewEncoder(&buf).Encode(doc); err != nil {
			return 0, err
		}
	}
	if buf.Len() == 0 {
		return 0, nil
	}

	res, err := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "true",
	}.Do(ctx, s.es.Client)
	if err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	var r struct {
		Errors bool `json:"errors"`
	}
	if res.IsError() {
		return 0, fmt.Errorf("bulk index: %s", res.String())
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}
	if r.Errors {
		return 0, fmt.Errorf("bulk index reported item errors")
	}

	s.logger.Info("faq entries indexed", map[string]interface{}{"count": len(entries)})
	return len(entries), nil
}
