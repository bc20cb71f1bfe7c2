package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nmdr-club/courtsync/internal/game"
)

// APIClient talks to the club's snapshot service over HTTP.
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
}

// NewClient creates a snapshot-service client for the given base URL.
func NewClient(baseURL string) *APIClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
	}
}

// NewClientWithHTTP is NewClient with an injected http.Client. Useful
// for tests that need to intercept requests.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *APIClient {
	return &APIClient{
		httpClient: httpClient,
		BaseURL:    baseURL,
	}
}

var _ Client = (*APIClient)(nil)

func (c *APIClient) PutSnapshot(ctx context.Context, date string, snapshot game.Snapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	url := fmt.Sprintf("%s/v1/game-states/%s", c.BaseURL, date)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d putting snapshot for %s", resp.StatusCode, date)
	}
	log.Debug("Snapshot pushed", "date", date, "version", snapshot.Version)
	return nil
}

func (c *APIClient) GetSnapshot(ctx context.Context, date string) (*game.Snapshot, error) {
	url := fmt.Sprintf("%s/v1/game-states/%s", c.BaseURL, date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching snapshot for %s", resp.StatusCode, date)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}
	var snapshot game.Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

func (c *APIClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// TodayKey formats a time as the YYYY-MM-DD key game states are stored
// under. One logical game state exists per club day.
func TodayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
