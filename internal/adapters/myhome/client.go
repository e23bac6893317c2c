// internal/adapters/myhome/client.go
package myhome

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/adapters/observability"
	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/domain"
)

const maxBackoff = 30 * time.Second

// Client fetches language-scoped statement payloads from the MyHome.ge API.
// A shared limiter enforces the minimum delay between any two outbound calls,
// retries included.
type Client struct {
	base       string
	hc         *http.Client
	token      string
	rl         *rate.Limiter
	maxRetries int
	debug      bool
}

func New(base, token string, maxRetries int, minDelay time.Duration, debug bool) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("API token is required")
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if minDelay <= 0 {
		minDelay = 500 * time.Millisecond
	}
	return &Client{
		base:       strings.TrimRight(base, "/"),
		hc:         &http.Client{Timeout: 30 * time.Second},
		token:      token,
		rl:         rate.NewLimiter(rate.Every(minDelay), 1),
		maxRetries: maxRetries,
		debug:      debug,
	}, nil
}

// FetchTranslation fetches one statement in one language and extracts its
// title/description. Transient and rate-limit failures are retried with
// exponential backoff; 404/401/403 and malformed payloads propagate at once.
func (c *Client) FetchTranslation(ctx context.Context, externalID string, lang domain.Language) (domain.Content, error) {
	url := fmt.Sprintf("%s/%s", c.base, externalID)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// minimum inter-call delay applies to every attempt, not just retries
		if err := c.rl.Wait(ctx); err != nil {
			return domain.Content{}, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return domain.Content{}, err
		}
		req.Header.Set("Accept", "application/json, text/plain, */*")
		req.Header.Set("Accept-Language", fmt.Sprintf("%s-US,%s;q=0.9,ka;q=0.8", lang, lang))
		req.Header.Set("Global-Authorization", c.token)
		req.Header.Set("Locale", string(lang))
		req.Header.Set("X-Website-Key", "myhome")
		req.Header.Set("User-Agent", "realestate-worker/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return domain.Content{}, ctx.Err()
			}
			observability.ObserveExternal("myhome", "statement", 0, time.Since(start))
			lastErr = fmt.Errorf("statements: %w", err)
			if attempt < c.maxRetries && sleepCtx(ctx, backoff(attempt)) {
				continue
			}
			if ctx.Err() != nil {
				return domain.Content{}, ctx.Err()
			}
			return domain.Content{}, lastErr
		}

		observability.ObserveExternal("myhome", "statement", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			content, err := c.decode(resp.Body, externalID, lang, time.Since(start))
			resp.Body.Close()
			return content, err

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.Content{}, domain.ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return domain.Content{}, domain.ErrUnauthorized

		case http.StatusTooManyRequests:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(attempt)
			}
			lastErr = fmt.Errorf("remote %d: %w", resp.StatusCode, domain.ErrRateLimited)
			if attempt < c.maxRetries && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return domain.Content{}, ctx.Err()
			}
			return domain.Content{}, lastErr

		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(attempt)
			}
			lastErr = fmt.Errorf("statements: remote %d", resp.StatusCode)
			if attempt < c.maxRetries && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return domain.Content{}, ctx.Err()
			}
			return domain.Content{}, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return domain.Content{}, fmt.Errorf("statements: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return domain.Content{}, lastErr
}

type envelope struct {
	Result bool           `json:"result"`
	Data   map[string]any `json:"data"`
}

// decode extracts title/description from a statement payload. A payload that
// carries neither field is malformed, not an empty success; a present-but-empty
// string is a valid empty translation.
func (c *Client) decode(body io.Reader, externalID string, lang domain.Language, dur time.Duration) (domain.Content, error) {
	raw, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return domain.Content{}, fmt.Errorf("statements: read body: %w", err)
	}
	if c.debug {
		log.Debug().
			Str("external_id", externalID).
			Str("lang", string(lang)).
			Dur("took", dur).
			RawJSON("payload", raw).
			Msg("statement payload")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Content{}, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}
	if !env.Result || env.Data == nil {
		return domain.Content{}, fmt.Errorf("%w: empty result", domain.ErrMalformed)
	}

	// the statement is nested under data.statement on the detail endpoint,
	// but legacy responses put the fields directly under data
	stmt := env.Data
	if nested, ok := env.Data["statement"].(map[string]any); ok {
		stmt = nested
	}

	title := firstString(stmt, "dynamic_title", "title", "name")
	desc := firstString(stmt, "comment", "description", "details")
	if title == nil && desc == nil {
		return domain.Content{}, fmt.Errorf("%w: no title or description fields", domain.ErrMalformed)
	}
	return domain.Content{Title: title, Description: desc}, nil
}

// firstString returns the first present string value among keys, trimmed.
// JSON null and non-string values count as absent.
func firstString(m map[string]any, keys ...string) *string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		return &s
	}
	return nil
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// attempt = retry attempt (0,1,2,...). Base doubles each attempt (500ms, 1s,
// 2s...), capped, with up to +50% random jitter to avoid thundering herds.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<attempt) * 500 * time.Millisecond
	if base > maxBackoff {
		base = maxBackoff
	}
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
