package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloudsketch/internal/topology"
)

// HTTPScorer delegates scoring to a remote service that accepts the request
// payload as JSON and answers {stability_score, critical_nodes}
type HTTPScorer struct {
	url    string
	client *http.Client
}

// NewHTTPScorer creates a scorer posting to url
func NewHTTPScorer(url string, timeout time.Duration) *HTTPScorer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPScorer{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Score implements Scorer
func (s *HTTPScorer) Score(ctx context.Context, req *topology.Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call scorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("scorer returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var raw struct {
		StabilityScore *int     `json:"stability_score"`
		CriticalNodes  []string `json:"critical_nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode scorer response: %w", err)
	}
	if raw.StabilityScore == nil {
		return nil, fmt.Errorf("decode scorer response: missing stability_score")
	}

	return &Result{
		StabilityScore: clampScore(*raw.StabilityScore),
		CriticalNodes:  knownIDs(req, raw.CriticalNodes),
	}, nil
}
