package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sitecoach/internal/config"
	"github.com/sells-group/sitecoach/pkg/anthropic"
)

// stubClient returns canned responses and counts calls.
type stubClient struct {
	calls     int
	responses []string
	err       error
}

func (s *stubClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	text := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return &anthropic.MessageResponse{
		Model:   req.Model,
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}, nil
}

func testInvoker(client anthropic.Client) *Invoker {
	inv := NewInvoker(client, NewCache(), config.AnthropicConfig{
		DefaultModel: "model-default",
		CheapModel:   "model-cheap",
		MaxRetries:   3,
	})
	inv.retryCfg.InitialBackoff = time.Millisecond
	inv.retryCfg.MaxBackoff = 2 * time.Millisecond
	return inv
}

func TestInvoke_CacheHitSkipsModelCall(t *testing.T) {
	stub := &stubClient{responses: []string{"first answer", "second answer"}}
	inv := testInvoker(stub)

	opts := CallOptions{CacheKey: "same-key"}
	first := inv.Invoke(context.Background(), "prompt one", opts)
	second := inv.Invoke(context.Background(), "prompt two", opts)

	assert.Equal(t, "first answer", first)
	assert.Equal(t, "first answer", second, "cached text returned even though the remote would differ")
	assert.Equal(t, 1, stub.calls)
}

func TestInvoke_DefaultKeyIsPromptPrefix(t *testing.T) {
	stub := &stubClient{responses: []string{"answer a", "answer b"}}
	inv := testInvoker(stub)

	prefix := strings.Repeat("p", 200)
	first := inv.Invoke(context.Background(), prefix+" tail one", CallOptions{})
	second := inv.Invoke(context.Background(), prefix+" tail two", CallOptions{})

	// Prompts sharing a 200-char prefix collide on the implicit key.
	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls)
}

func TestInvoke_StripsFenceWrapper(t *testing.T) {
	stub := &stubClient{responses: []string{"```json\n{\"ok\": true}\n```"}}
	inv := testInvoker(stub)

	out := inv.Invoke(context.Background(), "give me json", CallOptions{})
	assert.Equal(t, `{"ok": true}`, out)
}

func TestInvoke_InnerFencesPreserved(t *testing.T) {
	body := "Use this snippet:\n```\ncode here\n```\nDone."
	stub := &stubClient{responses: []string{body}}
	inv := testInvoker(stub)

	out := inv.Invoke(context.Background(), "explain", CallOptions{})
	assert.Equal(t, body, out)
}

func TestInvoke_FailureSentinelAfterRetries(t *testing.T) {
	stub := &stubClient{err: assert.AnError}
	inv := testInvoker(stub)

	out := inv.Invoke(context.Background(), "prompt", CallOptions{MaxRetries: 3})

	assert.Equal(t, FailureSentinel, out)
	assert.Equal(t, 3, stub.calls)

	// Sentinel is itself valid JSON for downstream extraction.
	parsed := inv.SafeJSON(context.Background(), "prompt", CallOptions{MaxRetries: 1})
	assert.Equal(t, "AI failed after retries", parsed["error"])
}

func TestInvoke_FailureNotCached(t *testing.T) {
	stub := &stubClient{err: assert.AnError}
	inv := testInvoker(stub)

	_ = inv.Invoke(context.Background(), "prompt", CallOptions{CacheKey: "k", MaxRetries: 1})
	stub.err = nil
	stub.responses = []string{"recovered"}

	out := inv.Invoke(context.Background(), "prompt", CallOptions{CacheKey: "k", MaxRetries: 1})
	assert.Equal(t, "recovered", out)
}

func TestInvoke_UsesDefaultModel(t *testing.T) {
	stub := &stubClient{responses: []string{"ok"}}
	inv := testInvoker(stub)

	require.Equal(t, "model-default", inv.DefaultModel())
	require.Equal(t, "model-cheap", inv.CheapModel())
}

func TestSafeJSON_WellFormed(t *testing.T) {
	stub := &stubClient{responses: []string{`{"score": 8, "notes": ["fast"]}`}}
	inv := testInvoker(stub)

	out := inv.SafeJSON(context.Background(), "rate this", CallOptions{})

	assert.Equal(t, float64(8), out["score"])
	assert.NotContains(t, out, "error")
}

func TestSafeJSON_EmptyResponse(t *testing.T) {
	stub := &stubClient{responses: []string{"   "}}
	inv := testInvoker(stub)

	out := inv.SafeJSON(context.Background(), "rate this", CallOptions{})

	assert.Equal(t, "AI returned empty response", out["error"])
	assert.Equal(t, "", out["raw"])
}

func TestSafeJSON_GarbageOutput(t *testing.T) {
	stub := &stubClient{responses: []string{"I cannot produce JSON today"}}
	inv := testInvoker(stub)

	out := inv.SafeJSON(context.Background(), "rate this", CallOptions{})

	assert.Contains(t, out, "error")
	assert.Equal(t, "I cannot produce JSON today", out["raw"])
}

func TestPromptKey(t *testing.T) {
	assert.Equal(t, "short", promptKey("  short  "))

	long := strings.Repeat("a", 300)
	assert.Len(t, promptKey(long), 200)
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\nhello\n```", "hello"},
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"missing closer", "```json\n{\"a\":1}", `{"a":1}`},
		{"whitespace", "  \n```\nx\n```\n ", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFence(tt.in))
		})
	}
}

func TestInvoker_CircuitOpenShortCircuits(t *testing.T) {
	stub := &stubClient{err: assert.AnError}
	inv := testInvoker(stub)

	// Trip the breaker.
	for i := 0; i < 5; i++ {
		_ = inv.Invoke(context.Background(), "p", CallOptions{CacheKey: "trip", MaxRetries: 1})
	}

	before := stub.calls
	out := inv.Invoke(context.Background(), "p", CallOptions{CacheKey: "after", MaxRetries: 3})

	assert.Equal(t, FailureSentinel, out)
	assert.Equal(t, before, stub.calls, "open circuit rejects without calling the client")
}

func TestInvoke_EmptyOutputCachedAsIs(t *testing.T) {
	stub := &stubClient{responses: []string{""}}
	inv := testInvoker(stub)

	out := inv.Invoke(context.Background(), "p", CallOptions{CacheKey: "k"})
	assert.Equal(t, "", out)

	// Second call hits the cache, no new request.
	_ = inv.Invoke(context.Background(), "p", CallOptions{CacheKey: "k"})
	assert.Equal(t, 1, stub.calls)
}
