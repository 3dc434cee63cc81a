package clu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"order-chatbot/internal/common/config"
	apperrors "order-chatbot/internal/common/errors"
	commonhttp "order-chatbot/internal/common/http"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/common/metrics"

	"github.com/google/uuid"
)

const participantID = "user-1"

var ErrMissingAPIKey = errors.New("CLU_API_KEY_MISSING")

// Client calls the Azure conversational language understanding endpoint.
type Client struct {
	cfg    config.CLUConfig
	http   *commonhttp.Client
	logger logger.Logger
}

func NewClient(cfg config.CLUConfig, log logger.Logger) *Client {
	return NewClientWithHTTP(cfg, commonhttp.NewClient(config.GetDuration(cfg.Timeout)), log)
}

func NewClientWithHTTP(cfg config.CLUConfig, httpClient *commonhttp.Client, log logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: log.WithFields(map[string]interface{}{"component": "clu"}),
	}
}

func (c *Client) url() string {
	return fmt.Sprintf("%s/language/:analyze-conversations?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.APIVersion)
}

func (c *Client) buildRequest(text string) analyzeRequest {
	return analyzeRequest{
		Kind: "Conversation",
		AnalysisInput: analysisInput{
			ConversationItem: conversationItem{
				ID:            participantID,
				Text:          text,
				Modality:      "text",
				Language:      c.cfg.Language,
				ParticipantID: participantID,
			},
		},
		Parameters: parameters{
			ProjectName:     c.cfg.ProjectName,
			Verbose:         true,
			DeploymentName:  c.cfg.DeploymentName,
			StringIndexType: "TextElement_V8",
		},
	}
}

// Analyze returns the top intent and entities for one user message.
// Every failure is a *errors.StandardError with an NLU code.
func (c *Client) Analyze(ctx context.Context, text string) (*Prediction, error) {
	if c.cfg.APIKey == "" {
		metrics.NLURequestsTotal.WithLabelValues("misconfigured").Inc()
		return nil, apperrors.NewNLUUnavailableError(ErrMissingAPIKey)
	}

	start := time.Now()
	defer func() {
		metrics.NLURequestDuration.Observe(time.Since(start).Seconds())
	}()

	payload := c.buildRequest(text)

	var raw []byte
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.NLURequestsTotal.WithLabelValues("timeout").Inc()
				return nil, apperrors.NewNLUTimeoutError(ctx.Err())
			}
		}

		headers := map[string]string{
			"Ocp-Apim-Subscription-Key": c.cfg.APIKey,
			"Apim-Request-Id":           uuid.NewString(),
		}
		raw, lastErr = c.http.PostJSON(ctx, c.url(), headers, payload)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil || errors.Is(lastErr, context.DeadlineExceeded) {
			metrics.NLURequestsTotal.WithLabelValues("timeout").Inc()
			return nil, apperrors.NewNLUTimeoutError(lastErr)
		}
		c.logger.Warn("clu request failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		})
	}
	if lastErr != nil {
		metrics.NLURequestsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.NewNLUUnavailableError(lastErr)
	}

	prediction, err := decode(raw)
	if err != nil {
		metrics.NLURequestsTotal.WithLabelValues("invalid_response").Inc()
		return nil, apperrors.NewNLUUnavailableError(err)
	}

	metrics.NLURequestsTotal.WithLabelValues("ok").Inc()
	c.logger.Debug("clu prediction", map[string]interface{}{
		"topIntent":   prediction.TopIntent,
		"entityCount": len(prediction.Entities),
	})
	return prediction, nil
}

func decode(raw []byte) (*Prediction, error) {
	if err := responseSchema.ValidateBytes(raw); err != nil {
		return nil, err
	}
	var resp analyzeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &Prediction{
		TopIntent: resp.Result.Prediction.TopIntent,
		Entities:  resp.Result.Prediction.Entities,
	}, nil
}
