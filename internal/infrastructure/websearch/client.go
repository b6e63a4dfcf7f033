// Package websearch implements the outbound retrieval side of evidence
// gathering: an HTML search endpoint client and a page fetcher, both behind
// one shared minimum-interval rate gate.
package websearch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/quizpilot/agent/internal/domain"
)

// snippetMaxChars caps the flattened page text kept per snippet.
const snippetMaxChars = 500

// Client talks to an HTML search endpoint (DuckDuckGo-style) and fetches
// result pages. Every outbound call, search or fetch, waits on the same
// burst-1 limiter, which enforces a minimum interval between calls.
type Client struct {
	httpClient *http.Client
	baseURL    string
	gate       *rate.Limiter
	debug      bool
}

// NewClient creates a search client. minInterval is the smallest allowed gap
// between any two outbound requests.
func NewClient(baseURL string, minInterval, timeout time.Duration) *Client {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		gate:       rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// SetDebug enables request logging.
func (c *Client) SetDebug(debug bool) { c.debug = debug }

// Search runs one query against the search endpoint and returns up to limit
// results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Add("q", query)
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchFailure, err)
	}

	results := parseSearchResults(body, limit)
	if c.debug {
		log.Printf("[SEARCH] query %q returned %d results", query, len(results))
	}
	return results, nil
}

// FetchPage downloads one page and reduces it to a snippet: scripts and
// styles stripped, text flattened to single spaces, truncated to 500 chars.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (domain.Snippet, error) {
	body, err := c.get(ctx, pageURL)
	if err != nil {
		return domain.Snippet{}, err
	}

	title, text := extractPageText(body)
	return domain.Snippet{
		SourceURL: pageURL,
		Title:     title,
		Text:      truncateRunes(text, snippetMaxChars),
	}, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	// The gate sleeps out the remainder of the minimum interval before every
	// outbound call, searches and page fetches alike.
	if err := c.gate.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate gate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "QuizPilot/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s: status %d", reqURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", reqURL, err)
	}
	return body, nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
