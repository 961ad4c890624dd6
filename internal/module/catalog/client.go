package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/readmanga/server/internal/shared/config"
	"github.com/readmanga/server/internal/shared/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxErrorBody = 4 << 10

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// HTTPClient talks to a MangaDex-compatible catalog API.
type HTTPClient struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]byte]
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewHTTPClient creates the upstream client. m may be nil.
func NewHTTPClient(cfg *config.CatalogConfig, m *metrics.Metrics, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
				ForceAttemptHTTP2:   true,
			},
			Timeout: cfg.Timeout,
		},
		metrics: m,
		logger:  logger.Named("catalog-client"),
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(limit, burst)

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog-upstream",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if c.metrics != nil {
				c.metrics.SetBreakerState(int(to))
			}
		},
	})

	return c
}

// isBreakerSuccess reports whether err leaves the upstream healthy.
// Client errors say nothing about upstream health, except 429.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode < 500 && httpErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// SearchManga lists titles matching query.
func (c *HTTPClient) SearchManga(ctx context.Context, query url.Values) (*RawMangaList, error) {
	var out RawMangaList
	if err := c.get(ctx, "manga", "/manga", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetManga fetches a single title with its cover, author and artist.
func (c *HTTPClient) GetManga(ctx context.Context, id string) (*RawManga, error) {
	query := url.Values{}
	query["includes[]"] = []string{"cover_art", "author", "artist"}

	var out struct {
		Data *RawManga `json:"data"`
	}
	if err := c.get(ctx, "manga_detail", "/manga/"+url.PathEscape(id), query, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, ErrNotFound
	}
	return out.Data, nil
}

// ListChapters lists chapters matching query.
func (c *HTTPClient) ListChapters(ctx context.Context, query url.Values) (*RawChapterList, error) {
	var out RawChapterList
	if err := c.get(ctx, "chapter", "/chapter", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetChapter fetches a single chapter.
func (c *HTTPClient) GetChapter(ctx context.Context, id string) (*RawChapter, error) {
	var out struct {
		Data *RawChapter `json:"data"`
	}
	if err := c.get(ctx, "chapter_detail", "/chapter/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, ErrNotFound
	}
	return out.Data, nil
}

// GetAtHomeServer resolves the image server for a chapter.
func (c *HTTPClient) GetAtHomeServer(ctx context.Context, chapterID string) (*RawAtHome, error) {
	var out RawAtHome
	if err := c.get(ctx, "at_home", "/at-home/server/"+url.PathEscape(chapterID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, endpoint, path, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(endpoint, 0, start)
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.record(endpoint, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	return body, nil
}

func (c *HTTPClient) record(endpoint string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(endpoint, status, time.Since(start))
	}
}
