// Package ai wraps the model client with caching, bounded retries, and
// output normalization so callers always get a string back, never an error.
package ai

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/sitecoach/internal/aijson"
	"github.com/sells-group/sitecoach/internal/config"
	"github.com/sells-group/sitecoach/internal/resilience"
	"github.com/sells-group/sitecoach/pkg/anthropic"
)

// FailureSentinel is returned by Invoke after exhausting retries. It is
// valid JSON so downstream extraction has a uniform input shape.
const FailureSentinel = `{"error": "AI failed after retries"}`

// cacheKeyPrefixLen is how much of the prompt becomes the implicit cache
// key. Distinct prompts sharing a 200-character prefix collide; callers that
// care pass an explicit CacheKey.
const cacheKeyPrefixLen = 200

const (
	defaultTemperature = 0.2
	defaultMaxTokens   = 2000
	safeJSONMaxTokens  = 1000
)

// CallOptions tunes a single model call. Zero values fall back to defaults.
type CallOptions struct {
	Model       string
	CacheKey    string
	MaxRetries  int
	Temperature float64
	MaxTokens   int64
	// Feature tags the call for cost attribution in logs.
	Feature string
}

// Invoker issues model calls through a circuit breaker with retry, consulting
// the response cache first.
type Invoker struct {
	client   anthropic.Client
	cache    *Cache
	breaker  *resilience.CircuitBreaker
	cfg      config.AnthropicConfig
	retryCfg resilience.RetryConfig
}

// NewInvoker wires an Invoker from its collaborators.
func NewInvoker(client anthropic.Client, cache *Cache, cfg config.AnthropicConfig) *Invoker {
	retryCfg := resilience.DefaultRetryConfig()
	// Any request failure is worth another attempt, except a circuit that
	// is already open.
	retryCfg.ShouldRetry = func(err error) bool {
		return !errors.Is(err, resilience.ErrCircuitOpen)
	}
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "create_message")

	return &Invoker{
		client:   client,
		cache:    cache,
		breaker:  resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
		cfg:      cfg,
		retryCfg: retryCfg,
	}
}

// DefaultModel returns the configured model for reasoning-heavy calls.
func (i *Invoker) DefaultModel() string { return i.cfg.DefaultModel }

// CheapModel returns the configured model for mechanical calls.
func (i *Invoker) CheapModel() string { return i.cfg.CheapModel }

// Cache exposes the response cache for lifecycle operations (clear, stats).
func (i *Invoker) Cache() *Cache { return i.cache }

// Invoke sends prompt to the model and returns the fence-stripped response
// text. Identical cache keys hit the cache unconditionally. Invoke never
// returns an error: after exhausting retries it returns FailureSentinel.
func (i *Invoker) Invoke(ctx context.Context, prompt string, opts CallOptions) string {
	model := opts.Model
	if model == "" {
		model = i.cfg.DefaultModel
	}
	key := opts.CacheKey
	if key == "" {
		key = promptKey(prompt)
	}

	if cached, ok := i.cache.Get(key); ok {
		zap.L().Debug("cache hit", zap.String("cache_key", key))
		return cached
	}

	retryCfg := i.retryCfg
	if opts.MaxRetries > 0 {
		retryCfg.MaxAttempts = opts.MaxRetries
	} else if i.cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = i.cfg.MaxRetries
	}

	temperature := opts.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	feature := opts.Feature
	if feature == "" {
		feature = "general"
	}

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.ExecuteVal(ctx, i.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return i.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:       model,
				MaxTokens:   maxTokens,
				Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
				Temperature: &temperature,
			})
		})
	})
	if err != nil {
		zap.L().Error("model call failed after retries",
			zap.String("model", model),
			zap.String("cache_key", key),
			zap.Error(err))
		return FailureSentinel
	}

	resp.Usage.LogCost(model, feature)

	output := stripFence(resp.Text())
	i.cache.Put(key, output)
	return output
}

// SafeJSON calls Invoke and normalizes the output into a map. The result
// always has map shape; failure is signaled by an "error" key, never by a
// panic or error return.
func (i *Invoker) SafeJSON(ctx context.Context, prompt string, opts CallOptions) map[string]any {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = safeJSONMaxTokens
	}

	raw := i.Invoke(ctx, prompt, opts)
	if strings.TrimSpace(raw) == "" {
		zap.L().Warn("empty model response", zap.String("cache_key", opts.CacheKey))
		return map[string]any{"error": "AI returned empty response", "raw": ""}
	}

	return aijson.ParseGuaranteed(raw)
}

// promptKey derives the implicit cache key from a prompt prefix.
func promptKey(prompt string) string {
	trimmed := strings.TrimSpace(prompt)
	if len(trimmed) <= cacheKeyPrefixLen {
		return trimmed
	}
	end := cacheKeyPrefixLen
	for end > 0 && !utf8.RuneStart(trimmed[end]) {
		end--
	}
	return trimmed[:end]
}

// stripFence removes a single fenced-code-block wrapper: the opening fence
// line and a trailing fence-only line. Inner fences are left alone.
func stripFence(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	lines := strings.Split(out, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
