// Package reddit implements a minimal Reddit API client for listing new
// submissions in a subreddit. It authenticates with the password grant used
// by script-type OAuth applications and paginates with the fullname cursor.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/subsift/internal/logger"
)

// Default endpoints. Overridable in config for tests.
const (
	DefaultAuthURL = "https://www.reddit.com"
	DefaultAPIURL  = "https://oauth.reddit.com"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 10 * 1024 * 1024 // 10 MB
)

// Client errors.
var (
	ErrNotAuthorized = errors.New("reddit authorization not valid")
	ErrNoToken       = errors.New("no access token in response")
)

// errTokenExpired marks a 401 on an API call; tokens from the password
// grant expire after about an hour, so one re-authentication is attempted
// before giving up.
var errTokenExpired = fmt.Errorf("%w: access token expired", ErrNotAuthorized)

// Config holds the client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	// AuthURL and APIURL default to the public Reddit endpoints.
	AuthURL string
	APIURL  string
	// RequestInterval throttles listing requests; Reddit asks script
	// clients to stay at or below one request every two seconds.
	RequestInterval time.Duration
	RequestTimeout  time.Duration
	// MaxRetries bounds retry attempts on 429 and 5xx responses.
	MaxRetries       int
	RetryInitialWait time.Duration
}

// Client is a rate-limited Reddit API client.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logger.Interface

	token string
}

// NewClient creates a new Reddit client. The client is not authenticated
// until Authenticate is called.
func NewClient(cfg Config, log logger.Interface) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.RetryInitialWait <= 0 {
		cfg.RetryInitialWait = time.Second
	}

	// One request per interval, no bursting. A zero interval disables
	// throttling (used in tests).
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RequestInterval), 1)
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    limiter,
		log:        log,
	}
}

// Authenticate obtains an access token via the password grant and verifies
// it against /api/v1/me. The scraper only proceeds when the identity check
// returns 200.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.cfg.AuthURL+"/api/v1/access_token",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodyBytes)).Decode(&tok); decodeErr != nil {
		return fmt.Errorf("failed to decode token response: %w", decodeErr)
	}
	if tok.Error != "" {
		return fmt.Errorf("token request rejected: %s", tok.Error)
	}
	if tok.AccessToken == "" {
		return ErrNoToken
	}
	c.token = tok.AccessToken

	// The /me probe must return 200 before any scraping happens.
	if verifyErr := c.verifyIdentity(ctx); verifyErr != nil {
		c.token = ""
		return verifyErr
	}

	c.log.Info("Reddit authentication succeeded", "username", c.cfg.Username)
	return nil
}

// verifyIdentity checks the access token against /api/v1/me.
func (c *Client) verifyIdentity(ctx context.Context) error {
	req, err := c.newAPIRequest(ctx, "/api/v1/me", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: /api/v1/me returned status %d", ErrNotAuthorized, resp.StatusCode)
	}
	return nil
}

// ListNew fetches one page of the newest submissions in a subreddit.
// Pass the previous page's After cursor to continue; an empty cursor starts
// from the top of the listing.
func (c *Client) ListNew(ctx context.Context, subreddit string, limit int, after string) (*Page, error) {
	if c.token == "" {
		return nil, ErrNotAuthorized
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if after != "" {
		params.Set("after", after)
	}

	var listing listingResponse
	if err := c.getJSON(ctx, "/r/"+subreddit+"/new", params, &listing); err != nil {
		return nil, fmt.Errorf("failed to list r/%s: %w", subreddit, err)
	}

	page := &Page{
		Posts: make([]Post, 0, len(listing.Data.Children)),
		After: listing.Data.After,
	}
	for _, child := range listing.Data.Children {
		page.Posts = append(page.Posts, Post{
			Subreddit: child.Data.Subreddit,
			Title:     child.Data.Title,
			Fullname:  child.Data.Name,
		})
	}
	return page, nil
}

// getJSON performs a rate-limited GET with retries on 429 and 5xx, and one
// re-authentication when the access token has expired.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	var lastErr error
	refreshed := false

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.cfg.RetryInitialWait << (attempt - 1)
			c.log.Warn("Retrying request",
				"path", path,
				"attempt", attempt,
				"wait", wait,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := c.newAPIRequest(ctx, path, params)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		retryable, err := c.decodeResponse(resp, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, errTokenExpired) && !refreshed {
			refreshed = true
			c.log.Warn("Access token rejected, re-authenticating", "path", path)
			if authErr := c.Authenticate(ctx); authErr != nil {
				return authErr
			}
			continue
		}
		if !retryable {
			return lastErr
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

// decodeResponse consumes the response body and reports whether a failure
// is worth retrying.
func (c *Client) decodeResponse(resp *http.Response, out any) (retryable bool, err error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodyBytes)).Decode(out); decodeErr != nil {
			return false, fmt.Errorf("failed to decode response: %w", decodeErr)
		}
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, fmt.Errorf("rate limited (status %d)", resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		return true, fmt.Errorf("server error (status %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized:
		return false, fmt.Errorf("%w: status %d", errTokenExpired, resp.StatusCode)
	case resp.StatusCode == http.StatusForbidden:
		return false, fmt.Errorf("%w: status %d", ErrNotAuthorized, resp.StatusCode)
	default:
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// newAPIRequest builds an authorized GET against the OAuth API host.
func (c *Client) newAPIRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	u := c.cfg.APIURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+c.token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	return req, nil
}
