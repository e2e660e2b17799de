// Package clients provides HTTP clients for the engine's external
// collaborators: the isolation service, the transaction history service and
// the fraud-correlation service.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
)

// IsolationClient calls the external isolation service. Any non-2xx response
// is an error; the engine treats isolation failures as fatal.
type IsolationClient struct {
	baseURL string
	client  *http.Client
}

// NewIsolationClient creates an isolation client for the given base URL.
func NewIsolationClient(baseURL string) *IsolationClient {
	return &IsolationClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *IsolationClient) EnforceIsolation(ctx context.Context, entityID string) error {
	body, _ := json.Marshal(map[string]string{"entity_id": entityID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/isolation/enforce", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build isolation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("isolation service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("isolation service rejected entity: status %d", resp.StatusCode)
	}
	return nil
}

// StaticIsolation is a permissive isolation implementation for deployments
// where isolation is enforced upstream of this engine.
type StaticIsolation struct {
	logger *zap.SugaredLogger
}

// NewStaticIsolation creates the permissive implementation and logs that
// isolation is delegated upstream.
func NewStaticIsolation(logger *zap.SugaredLogger) *StaticIsolation {
	logger.Warnw("isolation service not configured, relying on upstream enforcement")
	return &StaticIsolation{logger: logger}
}

func (s *StaticIsolation) EnforceIsolation(context.Context, string) error { return nil }

// HistoryClient reads the external, read-only transaction history service.
type HistoryClient struct {
	baseURL string
	client  *http.Client
}

// NewHistoryClient creates a history client for the given base URL.
func NewHistoryClient(baseURL string) *HistoryClient {
	return &HistoryClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *HistoryClient) RecentTransactions(ctx context.Context, entityID string, since time.Time) ([]aml.HistoryRecord, error) {
	q := url.Values{}
	q.Set("entity_id", entityID)
	q.Set("since", strconv.FormatInt(since.UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/transactions?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history service error: status %d", resp.StatusCode)
	}

	var records []aml.HistoryRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode history response: %w", err)
	}
	return records, nil
}

// FraudClient forwards transactions to the fraud-correlation service.
type FraudClient struct {
	baseURL string
	client  *http.Client
}

// NewFraudClient creates a fraud-correlation client for the given base URL.
func NewFraudClient(baseURL string) *FraudClient {
	return &FraudClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *FraudClient) AnalyzeTransaction(ctx context.Context, view aml.FraudView) (*aml.FraudResult, error) {
	body, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("encode fraud view: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/fraud/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build fraud request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fraud service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fraud service error: status %d", resp.StatusCode)
	}

	var result aml.FraudResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode fraud response: %w", err)
	}
	return &result, nil
}
