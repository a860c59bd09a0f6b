// Package pricing fetches raw price rows from Azure price sources and
// assembles them into price indexes.
//
// Sources:
// - Retail prices API (public, paged JSON)
// - Retail snapshot CSV (offline copy of the retail API)
// - Enterprise price sheet download (MCA or EA billing scope)
// - Enterprise price sheet CSV export
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"azure-bom-cost/core/normalize"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

const (
	// DefaultRetailURL is the public Azure retail prices endpoint
	DefaultRetailURL = "https://prices.azure.com/api/retail/prices"

	// RetailAPIVersion is the retail API version requested
	RetailAPIVersion = "2023-01-01-preview"
)

// RetailConfig configures the retail prices client
type RetailConfig struct {
	BaseURL    string
	APIVersion string
	Currency   types.Currency

	// HTTPTimeout bounds a single page request
	HTTPTimeout time.Duration

	// MaxAttempts per page; failed attempts back off linearly
	MaxAttempts int
	Backoff     time.Duration

	// CacheBytes bounds the in-process page cache; 0 disables it
	CacheBytes int64
	CacheTTL   time.Duration

	// Parallelism bounds concurrent service fetches in Prefetch
	Parallelism int
}

// DefaultRetailConfig returns production defaults
func DefaultRetailConfig() *RetailConfig {
	return &RetailConfig{
		BaseURL:     DefaultRetailURL,
		APIVersion:  RetailAPIVersion,
		Currency:    types.DefaultCurrency,
		HTTPTimeout: 2 * time.Minute,
		MaxAttempts: 4,
		Backoff:     2 * time.Second,
		CacheBytes:  64 << 20,
		CacheTTL:    time.Hour,
		Parallelism: 4,
	}
}

// RetailClient reads the Azure retail prices API
type RetailClient struct {
	httpClient *http.Client
	cfg        RetailConfig
	cache      *pageCache
	logger     *zap.Logger
}

// NewRetailClient creates a retail prices client
func NewRetailClient(cfg *RetailConfig, logger *zap.Logger) (*RetailClient, error) {
	if cfg == nil {
		cfg = DefaultRetailConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &RetailClient{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		cfg:        *cfg,
		logger:     logger,
	}
	if c.cfg.BaseURL == "" {
		c.cfg.BaseURL = DefaultRetailURL
	}
	if c.cfg.APIVersion == "" {
		c.cfg.APIVersion = RetailAPIVersion
	}
	if c.cfg.Currency == "" {
		c.cfg.Currency = types.DefaultCurrency
	}
	if c.cfg.MaxAttempts < 1 {
		c.cfg.MaxAttempts = 1
	}
	if c.cfg.CacheBytes > 0 {
		cache, err := newPageCache(c.cfg.CacheBytes, c.cfg.CacheTTL)
		if err != nil {
			return nil, errors.Config("failed to create retail page cache", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Close releases the page cache
func (c *RetailClient) Close() {
	if c.cache != nil {
		c.cache.close()
	}
}

// Currency returns the currency prices are requested in
func (c *RetailClient) Currency() types.Currency {
	return c.cfg.Currency
}

// ForCurrency returns a client requesting prices in currency. The copy
// shares the HTTP client and page cache; cache keys carry the currency.
func (c *RetailClient) ForCurrency(currency types.Currency) *RetailClient {
	if currency == "" || currency.Equal(c.cfg.Currency) {
		return c
	}
	cp := *c
	cp.cfg.Currency = currency
	return &cp
}

// retailPage is one page of the retail API response
type retailPage struct {
	Items        []normalize.Row `json:"Items"`
	NextPageLink string          `json:"NextPageLink"`
	Count        int             `json:"Count"`
}

// ServiceFilter builds an OData filter for a service, optionally scoped
// to one ARM region
func ServiceFilter(service, region string) string {
	f := fmt.Sprintf("serviceName eq '%s'", odataQuote(service))
	if region != "" {
		f += fmt.Sprintf(" and armRegionName eq '%s'", odataQuote(region))
	}
	return f
}

func odataQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func (c *RetailClient) firstURL(filter string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", errors.Config("invalid retail API URL", err)
	}
	q := u.Query()
	q.Set("api-version", c.cfg.APIVersion)
	q.Set("currencyCode", string(c.cfg.Currency))
	if filter != "" {
		q.Set("$filter", filter)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// withCurrency makes sure a next-page link still carries the currency
func (c *RetailClient) withCurrency(link string) string {
	if strings.Contains(link, "currencyCode=") {
		return link
	}
	joiner := "&"
	if !strings.Contains(link, "?") {
		joiner = "?"
	}
	return link + joiner + "currencyCode=" + url.QueryEscape(string(c.cfg.Currency))
}

// Fetch returns every row matching an OData filter, following page
// links until exhausted. A page link seen twice ends the walk.
func (c *RetailClient) Fetch(ctx context.Context, filter string) ([]normalize.Row, error) {
	key := string(c.cfg.Currency) + "|" + filter
	if c.cache != nil {
		if rows, ok := c.cache.get(key); ok {
			c.logger.Debug("retail cache hit", zap.String("filter", filter), zap.Int("rows", len(rows)))
			return rows, nil
		}
	}

	next, err := c.firstURL(filter)
	if err != nil {
		return nil, err
	}

	var rows []normalize.Row
	seen := make(map[string]bool)
	pages := 0
	for next != "" {
		if seen[next] {
			c.logger.Warn("retail page link repeats, stopping", zap.String("url", next))
			break
		}
		seen[next] = true

		page, err := c.getPage(ctx, next)
		if err != nil {
			return nil, err
		}
		pages++
		rows = append(rows, page.Items...)

		next = ""
		if page.NextPageLink != "" {
			next = c.withCurrency(page.NextPageLink)
		}
	}

	c.logger.Debug("retail fetch complete",
		zap.String("filter", filter),
		zap.Int("pages", pages),
		zap.Int("rows", len(rows)))

	if c.cache != nil {
		c.cache.set(key, rows)
	}
	return rows, nil
}

// getPage fetches one page, retrying transport errors, throttling and
// server errors with linear back-off
func (c *RetailClient) getPage(ctx context.Context, pageURL string) (*retailPage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := c.cfg.Backoff * time.Duration(attempt-1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		page, retry, err := c.tryPage(ctx, pageURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retry {
			break
		}
		c.logger.Debug("retail page failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return nil, errors.Network("retail prices request failed", lastErr).WithContext("url", pageURL)
}

func (c *RetailClient) tryPage(ctx context.Context, pageURL string) (*retailPage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, fmt.Errorf("retail API returned status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var page retailPage
	if err := dec.Decode(&page); err != nil {
		return nil, true, fmt.Errorf("failed to decode page: %w", err)
	}
	return &page, false, nil
}

// Prefetch fetches the rows for every service in region, concurrently.
// A service with no rows in the region is fetched again without the
// region filter so that global meters and other regions can serve the
// relaxed lookups. A failing service is logged and skipped; Prefetch
// fails only when every service fails. Overlapping rows are left for
// the normalizer to de-duplicate.
func (c *RetailClient) Prefetch(ctx context.Context, services []string, region string) ([]normalize.Row, error) {
	services = distinct(services)
	if len(services) == 0 {
		return nil, nil
	}

	results := make([][]normalize.Row, len(services))
	failures := make([]error, len(services))

	g, gctx := errgroup.WithContext(ctx)
	limit := c.cfg.Parallelism
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, svc := range services {
		g.Go(func() error {
			rows, err := c.Fetch(gctx, ServiceFilter(svc, region))
			if err == nil && len(rows) == 0 && region != "" {
				rows, err = c.Fetch(gctx, ServiceFilter(svc, ""))
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = err
				c.logger.Warn("retail prefetch failed for service",
					zap.String("service", svc),
					zap.Error(err))
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []normalize.Row
	failed := 0
	for i := range services {
		if failures[i] != nil {
			failed++
			continue
		}
		out = append(out, results[i]...)
	}
	if failed == len(services) {
		return nil, errors.Network("retail prefetch failed for every service", failures[0])
	}
	return out, nil
}

func distinct(values []string) []string {
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		k := strings.ToLower(v)
		if v == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
