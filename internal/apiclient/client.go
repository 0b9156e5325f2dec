// Package apiclient talks to the quiz catalog and score ledger REST API.
package apiclient

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

	"sdg-quest/internal/domain"
)

// Client implements app.QuizCatalog and app.ScoreLedger over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a client for the API rooted at baseURL. Requests are bounded
// by timeout in addition to any caller deadline.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListQuizzes fetches the ordered catalog.
func (c *Client) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	if err := c.getJSON(ctx, "/api/quizzes", &quizzes); err != nil {
		return nil, &domain.TransientFetchError{Op: "fetch quizzes", Err: err}
	}
	return quizzes, nil
}

// Scores fetches the full score history of userID.
func (c *Client) Scores(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	var body struct {
		UserScores []domain.ScoreRecord `json:"userScores"`
	}
	if err := c.getJSON(ctx, "/api/scores/"+url.PathEscape(userID), &body); err != nil {
		return nil, &domain.TransientFetchError{Op: "fetch scores", Err: err}
	}
	return body.UserScores, nil
}

// Submit posts a completed attempt with bearer authentication.
func (c *Client) Submit(ctx context.Context, creds domain.Credentials, sub domain.ScoreSubmission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/scores/submit", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.AuthRequiredError{Reason: apiMessage(resp)}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrInvalidSubmission, apiMessage(resp))
	case resp.StatusCode >= 300:
		return fmt.Errorf("submit score: %s: %s", resp.Status, apiMessage(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s: %s", path, resp.Status, apiMessage(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// apiMessage extracts {"message": ...} from an error response, falling back
// to the raw body.
func apiMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(data))
}
