// Package pokemontcg provides a client for the Pokemon TCG API, used to
// resolve card names to storefront product ids via each card's market-data
// link.
package pokemontcg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Pokemon TCG API operations the resolver needs.
type Client interface {
	// SearchCards searches cards by exact name.
	SearchCards(ctx context.Context, name string) ([]Card, error)

	// ResolveListingID extracts the numeric storefront product id from a
	// card's market-data URL, following one redirect when the id is not
	// embedded in the URL itself.
	ResolveListingID(ctx context.Context, marketURL string) (string, error)
}

// Card is the subset of the API's card object the resolver consumes.
type Card struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Set       SetInfo     `json:"set"`
	TCGPlayer *MarketData `json:"tcgplayer,omitempty"`
}

// SetInfo identifies the printing's set.
type SetInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MarketData carries the card's market-price page link.
type MarketData struct {
	URL string `json:"url"`
}

type searchResponse struct {
	Data []Card `json:"data"`
}

// Option configures the client.
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
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Pokemon TCG API client. The API key is optional but
// raises the rate allowance; unauthenticated use works for small runs.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.pokemontcg.io/v2",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchCards(ctx context.Context, name string) ([]Card, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "pokemontcg: rate limit wait")
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("name:%q", name))
	reqURL := fmt.Sprintf("%s/cards?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "pokemontcg: create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pokemontcg: search request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "pokemontcg: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("pokemontcg: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "pokemontcg: unmarshal search response")
	}
	return result.Data, nil
}

// listingIDPattern matches market URLs like
// https://prices.pokemontcg.io/tcgplayer/42382.
var listingIDPattern = regexp.MustCompile(`tcgplayer/(\d+)`)

// trailingIDPattern matches a numeric final path segment on a redirect
// target, e.g. https://www.tcgplayer.com/product/42382.
var trailingIDPattern = regexp.MustCompile(`/(\d+)(?:[/?#]|$)`)

func (c *httpClient) ResolveListingID(ctx context.Context, marketURL string) (string, error) {
	if m := listingIDPattern.FindStringSubmatch(marketURL); m != nil {
		return m[1], nil
	}

	// The id is not in the URL; the market page redirects to the listing,
	// and the redirect target carries the id as its trailing path segment.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, marketURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "pokemontcg: create redirect probe")
	}

	probe := &http.Client{
		Timeout: c.http.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := probe.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "pokemontcg: redirect probe failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	location := resp.Header.Get("Location")
	if location == "" {
		return "", eris.Errorf("pokemontcg: no listing id in %s and no redirect", marketURL)
	}
	if m := listingIDPattern.FindStringSubmatch(location); m != nil {
		return m[1], nil
	}
	if m := trailingIDPattern.FindStringSubmatch(location); m != nil {
		return m[1], nil
	}
	return "", eris.Errorf("pokemontcg: no listing id in redirect target %s", location)
}
