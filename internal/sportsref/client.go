package sportsref

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	// BaseURL for sports-reference college basketball pages
	BaseURL = "https://www.sports-reference.com/cbb"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval to stay under the site's rate limit
	MinRequestInterval = 3 * time.Second
)

// Client fetches sports-reference pages with rate limiting. Plain HTTP
// is tried first; when the site blocks the request it falls back to a
// headless browser, which the site treats as ordinary traffic.
type Client struct {
	baseURL    string
	httpClient *http.Client
	interval   time.Duration

	// Guards the shared rate limit across concurrent fetchers.
	mu          sync.Mutex
	lastRequest time.Time

	// Chromedp allocator for the headless fallback, created lazily.
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewClient creates a sports-reference client with a custom base URL.
// An empty baseURL uses the production site.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		interval:   MinRequestInterval,
	}
}

// SetRequestInterval overrides the request spacing, used by tests.
func (c *Client) SetRequestInterval(d time.Duration) {
	c.interval = d
}

// Close releases the headless browser if one was started.
func (c *Client) Close() {
	if c.allocCancel != nil {
		c.allocCancel()
	}
}

// FetchGamelog fetches the per-game log page for a team and season.
func (c *Client) FetchGamelog(ctx context.Context, team string, season int) (*goquery.Document, error) {
	url := fmt.Sprintf("%s/schools/%s/%d-gamelogs.html", c.baseURL, team, season)
	return c.fetchDocument(ctx, url)
}

// FetchSchedule fetches the schedule page for a team and season. The
// schedule page is the only source of the per-date game type.
func (c *Client) FetchSchedule(ctx context.Context, team string, season int) (*goquery.Document, error) {
	url := fmt.Sprintf("%s/schools/%s/%d-schedule.html", c.baseURL, team, season)
	return c.fetchDocument(ctx, url)
}

// FetchTeamList fetches the season's school-stats page listing every
// D-I team.
func (c *Client) FetchTeamList(ctx context.Context, season int) (*goquery.Document, error) {
	url := fmt.Sprintf("%s/seasons/%d-school-stats.html", c.baseURL, season)
	return c.fetchDocument(ctx, url)
}

func (c *Client) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	html, err := c.fetchWithRateLimit(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return doc, nil
}

// fetchWithRateLimit fetches content with automatic rate limiting.
// Each caller reserves a slot one interval after the previous one, so
// concurrent fetchers stay spaced out.
func (c *Client) fetchWithRateLimit(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	now := time.Now()
	slot := c.lastRequest.Add(c.interval)
	if c.lastRequest.IsZero() || slot.Before(now) {
		slot = now
	}
	c.lastRequest = slot
	c.mu.Unlock()

	if wait := time.Until(slot); wait > 0 {
		log.Printf("[sportsref] Rate limiting: waiting %v before next request", wait.Round(time.Millisecond))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return c.fetch(ctx, url)
}

// fetch tries a plain HTTP GET and falls back to the headless browser
// on a block response (403/429).
func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", url, err)
		}
		return string(body), nil
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		log.Printf("[sportsref] HTTP %d for %s, retrying via headless browser", resp.StatusCode, url)
		return c.fetchHeadless(ctx, url)
	default:
		return "", fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}
}

// fetchHeadless renders the page in headless Chrome.
func (c *Client) fetchHeadless(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	if c.allocCtx == nil {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(UserAgent),
		)
		c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
	allocCtx := c.allocCtx
	c.mu.Unlock()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 30*time.Second)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}
	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned for %s", url)
	}

	return htmlContent, nil
}
