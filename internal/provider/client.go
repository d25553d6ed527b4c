// Package provider is the sole external dependency: the only component
// permitted to perform network I/O. It gates every call against a
// monthly quota, retries transient failures with bounded backoff, and
// propagates authentication failures as fatal.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2/clientcredentials"

	"cfbranker.dev/cfb/internal/cache"
	"cfbranker.dev/cfb/internal/core"
)

// Config configures the outbound provider client.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Timeout      time.Duration
	MaxRetries   int
}

// Client is a rate-counted, retry-capable external data fetcher.
type Client struct {
	cfg        Config
	httpClient *http.Client
	quota      *Quota
	log        *log.Logger

	// cache holds upstream responses across polling cycles so an
	// unchanged provider response doesn't cost a retry budget or a
	// fresh unmarshal; cacheCfg governs freshness windows and the
	// RFC 9111 conditional-revalidation policy. A nil Redis-backed
	// cache.Client (caching disabled) degrades every lookup to a miss.
	cache    *cache.Client
	cacheCfg cache.UpstreamCacheConfig
}

func NewClient(cfg Config, quota *Quota, cacheClient *cache.Client, logger *log.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	var httpClient *http.Client
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		oauthCfg := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = oauthCfg.Client(context.Background())
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		quota:      quota,
		log:        logger,
		cache:      cacheClient,
		cacheCfg:   cache.DefaultUpstreamConfig(),
	}
}

// get performs a single quota-gated, retried GET against the provider and
// decodes the JSON response into out. A fresh cached response short-circuits
// the request entirely (no quota charged); a stale one is conditionally
// revalidated and, on a 304, only has its TTL refreshed.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	reqURL := c.cfg.BaseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	cacheKey := c.cache.UpstreamKey(http.MethodGet, c.cfg.BaseURL, endpoint+"?"+query.Encode())

	cached, hit := c.cache.GetHTTPCache(ctx, cacheKey)
	if hit {
		freshFor := c.cacheCfg.DefaultTTL
		if c.cacheCfg.RespectCacheControl {
			if maxAge := cache.ParseCacheControlMaxAge(cached.CacheControl); maxAge > 0 {
				freshFor = maxAge
			}
		}
		if freshFor > c.cacheCfg.MaxTTL {
			freshFor = c.cacheCfg.MaxTTL
		}
		if time.Since(cached.CachedAt) < freshFor {
			if err := json.Unmarshal(cached.Body, out); err == nil {
				return nil
			}
		}
	}

	if err := c.quota.Allow(ctx, endpoint); err != nil {
		return err
	}

	var lastErr error
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, resp, err := c.doRequest(ctx, reqURL, func(req *http.Request) {
			if hit && c.cacheCfg.EnableConditionalRevalidation {
				c.cache.AddConditionalHeaders(ctx, cacheKey, req)
			}
		})
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusNotModified && hit {
			_ = c.cache.RefreshHTTPCache(ctx, cacheKey, c.cacheCfg.DetermineTTL(resp))
			if err := json.Unmarshal(cached.Body, out); err != nil {
				return core.NewProviderFatalError(endpoint, fmt.Errorf("malformed cached response: %w", err))
			}
			return nil
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return core.NewProviderFatalError(endpoint, fmt.Errorf("auth failure: status %d", resp.StatusCode))
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("transient status %d", resp.StatusCode)
			continue
		case resp.StatusCode >= 400:
			return core.NewProviderFatalError(endpoint, fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return core.NewProviderFatalError(endpoint, fmt.Errorf("malformed response: %w", err))
		}

		_ = c.cache.CacheHTTPResponse(ctx, cacheKey, resp, body, c.cacheCfg.DetermineTTL(resp))
		return nil
	}

	return core.NewProviderFatalError(endpoint, fmt.Errorf("retries exhausted: %w", lastErr))
}

// doRequest issues a single GET, invoking decorate (if non-nil) on the
// request before it's sent so the caller can attach conditional-revalidation
// headers. It returns the response alongside the drained body so the caller
// can inspect status and headers (for caching) without re-reading the body.
func (c *Client) doRequest(ctx context.Context, reqURL string, decorate func(*http.Request)) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, bytes.NewReader(nil))
	if err != nil {
		return nil, nil, err
	}
	if decorate != nil {
		decorate(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, err
	}
	return body, resp, nil
}

func (c *Client) GetTeams(ctx context.Context, year core.SeasonYear) ([]TeamRecord, error) {
	var out []TeamRecord
	err := c.get(ctx, "/teams", url.Values{"year": {strconv.Itoa(int(year))}}, &out)
	return out, err
}

func (c *Client) GetGames(ctx context.Context, year core.SeasonYear, seasonType SeasonType, week *int) ([]GameRecord, error) {
	q := url.Values{"year": {strconv.Itoa(int(year))}, "season_type": {string(seasonType)}}
	if week != nil {
		q.Set("week", strconv.Itoa(*week))
	}
	var out []GameRecord
	err := c.get(ctx, "/games", q, &out)
	return out, err
}

func (c *Client) GetRecruiting(ctx context.Context, year core.SeasonYear) (map[string]int, error) {
	var out map[string]int
	err := c.get(ctx, "/recruiting", url.Values{"year": {strconv.Itoa(int(year))}}, &out)
	return out, err
}

func (c *Client) GetTransferPortal(ctx context.Context, year core.SeasonYear) (map[string]int, error) {
	var out map[string]int
	err := c.get(ctx, "/transfer-portal", url.Values{"year": {strconv.Itoa(int(year))}}, &out)
	return out, err
}

func (c *Client) GetReturningProduction(ctx context.Context, year core.SeasonYear) (map[string]float64, error) {
	var out map[string]float64
	err := c.get(ctx, "/returning-production", url.Values{"year": {strconv.Itoa(int(year))}}, &out)
	return out, err
}

func (c *Client) GetAPPoll(ctx context.Context, year core.SeasonYear, week int) ([]PollEntry, error) {
	var out []PollEntry
	err := c.get(ctx, "/ap-poll", url.Values{"year": {strconv.Itoa(int(year))}, "week": {strconv.Itoa(week)}}, &out)
	return out, err
}

// GetCurrentWeek returns the provider's notion of the current week, or
// nil if the provider has none (e.g. off-season).
func (c *Client) GetCurrentWeek(ctx context.Context, year core.SeasonYear) (*int, error) {
	var out struct {
		Week *int `json:"week"`
	}
	if err := c.get(ctx, "/current-week", url.Values{"year": {strconv.Itoa(int(year))}}, &out); err != nil {
		return nil, err
	}
	return out.Week, nil
}
