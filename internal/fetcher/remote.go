package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RemoteOptions configures a Remote downloader.
type RemoteOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	MaxBytes   int64   // 0 means no cap
	RatePerSec float64 // 0 means unlimited
}

// Remote downloads import files over HTTP(S). Transport errors, 429, and 5xx
// responses are retried with jittered exponential backoff.
type Remote struct {
	client  *http.Client
	opts    RemoteOptions
	limiter *rate.Limiter
	sleep   func(ctx context.Context, attempt int)
}

// NewRemote creates a Remote with defaults for unset options.
func NewRemote(opts RemoteOptions) *Remote {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "media-import/1.0"
	}

	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}

	return &Remote{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		sleep:   backoff,
	}
}

// IsRemote reports whether src is an http or https URL.
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// FileName returns the last path element of a URL, which the parser uses to
// pick a format. Query strings are ignored.
func FileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return ""
	}
	return name
}

// Fetch downloads rawURL and returns the body.
func (r *Remote) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", r.opts.UserAgent)

	resp, err := r.doWithRetry(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("fetch: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body := io.Reader(resp.Body)
	if r.opts.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, r.opts.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read body from %s", rawURL)
	}
	if r.opts.MaxBytes > 0 && int64(len(data)) > r.opts.MaxBytes {
		return nil, eris.Errorf("fetch: %s exceeds %d bytes", rawURL, r.opts.MaxBytes)
	}

	zap.L().Debug("fetch: downloaded",
		zap.String("url", rawURL),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

func (r *Remote) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range r.opts.MaxRetries {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		resp, err := r.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			zap.L().Warn("fetch: request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			r.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("fetch: retryable status",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			r.sleep(ctx, attempt)
			continue
		}

		return resp, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, eris.Wrap(ctxErr, "retries cancelled")
	}
	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

