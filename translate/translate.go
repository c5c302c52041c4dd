// Package translate implements machine translation of XLIFF label content
// through pluggable providers: Azure Cognitive Services Translator (token
// authenticated REST) and the keyless Google Translate web endpoint.
//
// The Translator wraps a Provider and handles what every provider needs:
// language code mapping, protection of #N# placeholders and splitting of
// content that exceeds the per-request size limit.
package translate

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// MaxChars is the largest content sent in one request.
const MaxChars = 5000

// ContentType tells the provider how to treat the text.
type ContentType string

const (
	// HTML content keeps inline markup intact.
	HTML ContentType = "html"
	// Plain content is translated as text.
	Plain ContentType = "plain"
)

// ErrAuth reports that the provider rejected the credential. It is not
// retried and aborts the translation stage.
var ErrAuth = errors.New("translation service rejected the credential")

// ErrUnsupportedLanguage reports a tag without a provider code.
var ErrUnsupportedLanguage = errors.New("language not supported by the translation service")

// Provider translates one piece of content between provider language codes.
type Provider interface {
	Translate(ctx context.Context, text, from, to string, ct ContentType) (string, error)
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls provider HTTP behavior and diagnostics.
type Options struct {
	// Timeout is the per-request timeout. Default: 30s.
	Timeout time.Duration
	// MaxRetries is the maximum number of retries on 429 and 5xx. Default: 3.
	MaxRetries int
	// Backoff returns the wait before retry attempt n (0-based).
	// Default: 2^n seconds.
	Backoff func(attempt int) time.Duration
	// OnLog emits debug messages.
	OnLog func(format string, args ...any)
	// Verbose enables per-request logging.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.Verbose && o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return 30 * time.Second
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

func (o *Options) backoff(attempt int) time.Duration {
	if o.Backoff != nil {
		return o.Backoff(attempt)
	}
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// ---------------------------------------------------------------------------
// Rate limit state (shared pause for all callers of a provider)
// ---------------------------------------------------------------------------

type rateLimitState struct {
	mu       sync.Mutex
	paused   int32 // atomic: 1 = paused
	pauseEnd time.Time
}

func (r *rateLimitState) isPaused() bool {
	return atomic.LoadInt32(&r.paused) == 1
}

func (r *rateLimitState) pause(duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauseEnd = time.Now().Add(duration)
	atomic.StoreInt32(&r.paused, 1)
}

func (r *rateLimitState) unpause() {
	atomic.StoreInt32(&r.paused, 0)
}

// waitIfPaused blocks until the rate limit pause is over.
func (r *rateLimitState) waitIfPaused(ctx context.Context) error {
	for r.isPaused() {
		r.mu.Lock()
		remaining := time.Until(r.pauseEnd)
		r.mu.Unlock()
		if remaining <= 0 {
			r.unpause()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(remaining, 100*time.Millisecond)):
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

func makeHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// retryAfter reads the Retry-After header in seconds, falling back to fallback.
func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
