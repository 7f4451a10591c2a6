// Package scryfall provides a client for the Scryfall card API, used to
// cross-reference card-database identifiers to storefront product ids.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when Scryfall has no card for the identifier.
var ErrNotFound = eris.New("scryfall: card not found")

// Client defines the Scryfall operations the resolver needs.
type Client interface {
	// Card fetches a card by its Scryfall identifier.
	Card(ctx context.Context, id string) (*Card, error)
}

// Card is the subset of the Scryfall card object the resolver consumes.
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SetName     string `json:"set_name"`
	TCGPlayerID int64  `json:"tcgplayer_id"`
}

// Option configures the Scryfall client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Scryfall client. Requests are rate-limited to the
// API's requested courtesy pace (10 req/s).
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://api.scryfall.com",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Card(ctx context.Context, id string) (*Card, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "scryfall: rate limit wait")
	}

	reqURL := fmt.Sprintf("%s/cards/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scryfall: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "scryfall: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "scryfall: read response body")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("scryfall: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var card Card
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, eris.Wrap(err, "scryfall: unmarshal card")
	}
	return &card, nil
}
