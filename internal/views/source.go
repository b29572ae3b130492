package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrPostNotFound is returned by a PostSource that has no such post.
var ErrPostNotFound = errors.New("post not found")

// PostSource loads the document of a post.
type PostSource interface {
	Post(ctx context.Context, id int) (string, error)
}

// MemorySource serves posts from a map.
type MemorySource map[int]string

// Post implements PostSource.
func (m MemorySource) Post(ctx context.Context, id int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc, ok := m[id]
	if !ok {
		return "", ErrPostNotFound
	}
	return doc, nil
}

// RandomSource builds post documents from the server's /api/rnd endpoint.
type RandomSource struct {
	// BaseURL is the server origin, e.g. "http://localhost:3000".
	BaseURL string

	// Client defaults to an http.Client with a 5s timeout.
	Client *http.Client
}

// Post implements PostSource.
func (s *RandomSource) Post(ctx context.Context, id int) (string, error) {
	url := strings.TrimSuffix(s.BaseURL, "/") + "/api/rnd"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: %s", url, resp.Status)
	}

	var body struct {
		Rnd int `json:"rnd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode %s: %w", url, err)
	}
	return fmt.Sprintf("Post %d. The random number of the day is %d.", id, body.Rnd), nil
}
