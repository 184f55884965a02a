package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/finder/internal/logging"
)

// Fetcher defines the catalog reads used by the view models.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	FetchCategory(ctx context.Context, category string) ([]Item, error)
	FetchItem(ctx context.Context, id int64) (ItemDetail, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// Client talks to the catalog HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	defaultAPIBase   = "https://dummyjson.com"
	defaultUserAgent = "finder/0.1"
	defaultTimeout   = 10 * time.Second
)

// NewClient builds a Client for the service rooted at base.
// A zero timeout uses the default.
func NewClient(base string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	u, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
		logger:    logging.OrNop(logger),
	}, nil
}

// FetchCategory retrieves the items listed under category.
func (c *Client) FetchCategory(ctx context.Context, category string) ([]Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("category required")
	}
	var payload ListResponse
	if err := c.do(ctx, "/products/category/"+category, &payload); err != nil {
		return nil, err
	}
	if err := validateList(payload.Products); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload.Products, nil
}

// FetchItem retrieves a single item by id.
func (c *Client) FetchItem(ctx context.Context, id int64) (ItemDetail, error) {
	if c == nil {
		return ItemDetail{}, fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return ItemDetail{}, fmt.Errorf("item id required")
	}
	var payload ItemDetail
	if err := c.do(ctx, "/products/"+strconv.FormatInt(id, 10), &payload); err != nil {
		return ItemDetail{}, err
	}
	if err := payload.Validate(); err != nil {
		return ItemDetail{}, fmt.Errorf("decode response: %w", err)
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, path string, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	log := c.logger.With(zap.String("request_id", requestID), zap.String("path", path))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("catalog request failed", zap.Error(err))
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug("catalog request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Path: path, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(base string) (*url.URL, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", base, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base %q: missing host", base)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
