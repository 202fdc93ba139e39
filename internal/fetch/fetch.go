// Package fetch retrieves raw HTML from arbitrary URLs, including slow
// developer-preview hosts, with bounded retries and a TLS-verification
// fallback for self-signed preview certificates.
package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/sitecoach/internal/config"
)

// minViableBody is the smallest 200-response body accepted as real content.
// Preview hosts often 200 with a near-empty "loading" shell while the app
// cold-starts; anything shorter is treated as not ready and retried.
const minViableBody = 50

const maxBodyBytes = 4 * 1024 * 1024

// previewHostPatterns match hostnames of developer-preview platforms that
// cold-start slowly and get the extended timeout tier.
var previewHostPatterns = []string{".replit.", "spock.", ".repl.co", "replit.dev"}

var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept-Encoding":           "gzip, deflate",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// Result is the outcome of a single Fetch. Success is true only when the
// remote returned HTTP 200 with a body of at least minViableBody characters.
type Result struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	HTML       string `json:"-"`
	Error      string `json:"error,omitempty"`
}

// Fetcher performs HTTP fetches with retry, timeout tiering, and per-host
// rate limiting so repeated analyses of the same site stay polite.
type Fetcher struct {
	timeout        time.Duration
	previewTimeout time.Duration
	maxAttempts    int

	verified *http.Client
	insecure *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// New creates a Fetcher from config.
func New(cfg config.FetchConfig) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	previewTimeout := time.Duration(cfg.PreviewTimeoutSecs) * time.Second
	if previewTimeout <= 0 {
		previewTimeout = 45 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	return &Fetcher{
		timeout:        timeout,
		previewTimeout: previewTimeout,
		maxAttempts:    maxAttempts,
		verified: &http.Client{
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		insecure: &http.Client{
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // deliberate fallback for self-signed preview hosts
			},
		},
		limiters: make(map[string]*rate.Limiter),
		sleep:    time.Sleep,
	}
}

// Fetch retrieves the HTML at rawURL. It never returns an error; every
// failure mode resolves to a Result with a populated Error field.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Result {
	target, errMsg := normalizeURL(rawURL)
	if errMsg != "" {
		return Result{Error: errMsg}
	}

	timeout := f.timeout
	if isPreviewHost(target.Hostname()) {
		timeout = f.previewTimeout
	}

	if err := f.limiter(target.Hostname()).Wait(ctx); err != nil {
		return Result{Error: fmt.Sprintf("rate limit wait: %v", err)}
	}

	log := zap.L().With(zap.String("url", target.String()))

	var lastError string
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		res, retry := f.attempt(ctx, target.String(), timeout, log, attempt)
		if !retry {
			return res
		}
		lastError = res.Error
		if attempt < f.maxAttempts {
			f.sleep(time.Second)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if lastError == "" {
		lastError = fmt.Sprintf("failed after %d attempts", f.maxAttempts)
	}
	return Result{Error: lastError}
}

// attempt performs one fetch round. retry=false means the result is final,
// success or not.
func (f *Fetcher) attempt(ctx context.Context, target string, timeout time.Duration, log *zap.Logger, attempt int) (res Result, retry bool) {
	body, status, err := f.get(ctx, f.verified, target, timeout)
	if err != nil {
		if isTLSOrConnectError(err) {
			// Self-signed or misconfigured preview certs get exactly one
			// unverified attempt per round, never a permanent downgrade.
			log.Warn("tls/connect error, retrying without verification",
				zap.Int("attempt", attempt), zap.Error(err))
			body, status, err = f.get(ctx, f.insecure, target, timeout)
			if err == nil && status == http.StatusOK && len(body) >= minViableBody {
				return Result{Success: true, StatusCode: status, HTML: body}, false
			}
			if err != nil {
				return Result{Error: err.Error()}, true
			}
			return Result{StatusCode: status, Error: fmt.Sprintf("HTTP %d after insecure retry", status)}, true
		}
		if isTimeout(err) {
			log.Warn("fetch timeout", zap.Int("attempt", attempt), zap.Duration("timeout", timeout))
			return Result{Error: fmt.Sprintf("request timeout (> %s)", timeout)}, true
		}
		log.Warn("fetch attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		return Result{Error: err.Error()}, true
	}

	if status != http.StatusOK {
		// A definitive server answer. Retrying a 4xx/5xx won't change it.
		return Result{
			StatusCode: status,
			Error:      fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)),
		}, false
	}

	if len(body) < minViableBody {
		log.Debug("short body, treating as not ready", zap.Int("attempt", attempt), zap.Int("length", len(body)))
		return Result{StatusCode: status, Error: "empty or slow response from server"}, true
	}

	return Result{Success: true, StatusCode: status, HTML: body}, false
}

func (f *Fetcher) get(ctx context.Context, client *http.Client, target string, timeout time.Duration) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	// Setting Accept-Encoding ourselves disables the transport's transparent
	// gzip handling, so decompression happens here.
	reader, err := decompressor(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return "", resp.StatusCode, err
	}

	raw, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return "", resp.StatusCode, err
	}

	return decodeBody(raw, resp.Header.Get("Content-Type")), resp.StatusCode, nil
}

func decompressor(body io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		return gzip.NewReader(body)
	case "deflate":
		return flate.NewReader(body), nil
	default:
		return body, nil
	}
}

// limiter returns the per-host rate limiter, creating it on first use.
func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(2), 4)
		f.limiters[host] = l
	}
	return l
}

// normalizeURL validates rawURL and prepends https:// when no scheme is
// present. Returns a non-empty error message instead of an error value so
// the caller can drop it straight into a Result.
func normalizeURL(rawURL string) (*url.URL, string) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, "URL cannot be empty"
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Sprintf("invalid URL: %v", err)
	}
	if parsed.Scheme == "" {
		parsed, err = url.Parse("https://" + trimmed)
		if err != nil {
			return nil, fmt.Sprintf("invalid URL: %v", err)
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Sprintf("invalid scheme: %s. Only http and https are supported.", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return nil, "URL has no host"
	}
	return parsed, ""
}

func isPreviewHost(host string) bool {
	lower := strings.ToLower(host)
	for _, p := range previewHostPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// isTLSOrConnectError reports whether err is a certificate problem or a
// connection-establishment failure, the two cases worth an unverified retry.
func isTLSOrConnectError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var invalidCert x509.CertificateInvalidError
	if errors.As(err, &unknownAuth) || errors.As(err, &hostErr) || errors.As(err, &invalidCert) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "x509:") ||
		strings.Contains(msg, "tls:") ||
		strings.Contains(msg, "certificate") ||
		strings.Contains(msg, "connection refused")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
