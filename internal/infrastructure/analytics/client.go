package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/landmark-guide/internal/config"
	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/domain/repository"
	"go.uber.org/zap"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.Logger
}

type visitBatch struct {
	Visits []domain.VisitLog `json:"visits"`
}

type batchResponse struct {
	Accepted int    `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// NewAnalyticsClient создает клиент коллектора аналитики
func NewAnalyticsClient(cfg *config.AnalyticsConfig, logger *zap.Logger) repository.AnalyticsRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		logger:  logger,
	}
}

// SendVisits posts one batch of visit logs
func (c *client) SendVisits(ctx context.Context, entries []domain.VisitLog) error {
	if len(entries) == 0 {
		return nil
	}

	body, err := json.Marshal(visitBatch{Visits: entries})
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	url := c.baseURL + "/v1/visits/batch"

	c.logger.Debug("Calling analytics collector",
		zap.String("url", url),
		zap.Int("entries", len(entries)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Analytics collector returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return fmt.Errorf("analytics collector error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var out batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Error != "" {
		return fmt.Errorf("analytics collector rejected batch: %s", out.Error)
	}

	if out.Accepted != 0 && out.Accepted < len(entries) {
		c.logger.Warn("Analytics collector accepted part of the batch",
			zap.Int("sent", len(entries)),
			zap.Int("accepted", out.Accepted))
	}

	return nil
}
