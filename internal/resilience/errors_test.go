package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("bad request"), false},
		{"transient wrapper", NewTransientError(errors.New("x"), 503), true},
		{"wrapped transient", fmt.Errorf("call failed: %w", NewTransientError(errors.New("x"), 429)), true},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"reset by peer string", errors.New("read tcp: connection reset by peer"), true},
		{"dns failure", errors.New("dial tcp: lookup example.com: no such host"), true},
		{"tls handshake timeout", errors.New("net/http: TLS handshake timeout"), true},
		{"anthropic overloaded", errors.New(`{"type":"overloaded_error","message":"Overloaded"}`), true},
		{"anthropic rate limit", errors.New(`{"type":"rate_limit_error","message":"slow down"}`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	te := NewTransientError(inner, 502)

	if !errors.Is(te, inner) {
		t.Error("expected errors.Is to find inner error")
	}
	if te.StatusCode != 502 {
		t.Errorf("expected status 502, got %d", te.StatusCode)
	}
	if te.Error() != "inner" {
		t.Errorf("unexpected message: %q", te.Error())
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("expected %d to be transient", code)
		}
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 422} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("expected %d to be non-transient", code)
		}
	}
}
