package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"emploi_backend/internal/logger"
)

// Scorer computes a compatibility score in [0,1] between a stored CV and an
// offer text. Implementations may call out over the network.
type Scorer interface {
	Score(ctx context.Context, cvPath, offerText string) (float64, error)
}

// Config holds the scoring service connection settings.
type Config struct {
	Endpoint       string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Client is the HTTP Scorer implementation.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}

	return &Client{
		endpoint: cfg.Endpoint,
		http: &http.Client{
			Timeout: cfg.ReadTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.ConnectTimeout,
				}).DialContext,
			},
		},
	}
}

type matchRequest struct {
	CVPath    string `json:"cv_path"`
	OffreText string `json:"offre_text"`
}

type matchResponse struct {
	Score *float64 `json:"score"`
	Error string   `json:"error"`
}

// Score posts the CV path and offer text to the matching service and returns
// the score clamped to [0,1].
func (c *Client) Score(ctx context.Context, cvPath, offerText string) (float64, error) {
	start := time.Now()

	score, err := c.score(ctx, cvPath, offerText)
	logger.ScoringLog(cvPath, time.Since(start), score, err)
	return score, err
}

func (c *Client) score(ctx context.Context, cvPath, offerText string) (float64, error) {
	body, err := json.Marshal(matchRequest{CVPath: cvPath, OffreText: offerText})
	if err != nil {
		return 0, fmt.Errorf("failed to encode match request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build match request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("matching service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("matching service returned status %d", resp.StatusCode)
	}

	var parsed matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode match response: %w", err)
	}
	if parsed.Score == nil {
		if parsed.Error != "" {
			return 0, fmt.Errorf("matching service error: %s", parsed.Error)
		}
		return 0, fmt.Errorf("matching service response missing score")
	}

	return clamp(*parsed.Score), nil
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ScoreOrZero never fails: any scoring error is logged and reported as 0.0.
// Application submission must not depend on the matching service being up.
func ScoreOrZero(ctx context.Context, scorer Scorer, cvPath, offerText string) float64 {
	score, err := scorer.Score(ctx, cvPath, offerText)
	if err != nil {
		logger.WithError(err).Warn("scoring failed, defaulting to zero", "cv_path", cvPath)
		return 0.0
	}
	return score
}
