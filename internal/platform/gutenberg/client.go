package gutenberg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// MaxTextBytes caps the size of a downloaded book.
const MaxTextBytes = 64 << 20

// FetchError reports a failed download: a transport error, a timeout or a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Config struct {
	UserAgent string
	RPS       int
	Timeout   time.Duration
	CacheTTL  time.Duration
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	cache      *cache.Cache
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Every(time.Second / time.Duration(cfg.RPS))
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// FetchText downloads url and returns its body as text. It makes a single
// attempt; callers decide what to do with a *FetchError.
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", ErrEmptyURL
	}

	if c.cache != nil {
		if text, ok := c.cache.Get(url); ok {
			return text.(string), nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxTextBytes+1))
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if len(body) > MaxTextBytes {
		return "", &FetchError{URL: url, Err: errors.New("response body too large")}
	}

	text := string(body)
	if c.cache != nil {
		c.cache.Set(url, text, cache.DefaultExpiration)
	}
	return text, nil
}
