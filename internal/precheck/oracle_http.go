package precheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

// HTTPOracle calls a remote check-conflicts endpoint over HTTP. Any non-2xx
// status or transport failure is returned as an error, which the Checker
// converts into an undetermined verdict.
type HTTPOracle struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPOracle builds an oracle client against the given API base URL
// (e.g. "https://campus.example.com/api/v1").
func NewHTTPOracle(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPOracle {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPOracle{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// CheckConflicts posts the candidate slot to the oracle and decodes its verdict.
func (o *HTTPOracle) CheckConflicts(ctx context.Context, classGroupID string, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode conflict check request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/class-groups/%s/check-conflicts", o.baseURL, url.PathEscape(classGroupID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build conflict check request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("conflict check call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		o.logger.Debug("conflict oracle rejected request",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return nil, fmt.Errorf("conflict check returned status %d", resp.StatusCode)
	}

	// The service wraps payloads in a data envelope; tolerate both bare and
	// enveloped results.
	var envelope struct {
		Data *models.ConflictCheckResult `json:"data"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read conflict check response: %w", err)
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}
	var result models.ConflictCheckResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode conflict check response: %w", err)
	}
	return &result, nil
}
