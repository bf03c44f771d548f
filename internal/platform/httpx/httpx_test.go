package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (s statusErr) Error() string       { return "http error" }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 599} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("%d should be retryable", code)
		}
	}
	for _, code := range []int{200, 400, 401, 404, 422} {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("%d should not be retryable", code)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(nil) {
		t.Fatalf("nil is not retryable")
	}
	if !IsRetryableError(context.DeadlineExceeded) {
		t.Fatalf("deadline exceeded is retryable")
	}
	if IsRetryableError(context.Canceled) {
		t.Fatalf("cancellation is deliberate, never retried")
	}
	if !IsRetryableError(statusErr(503)) {
		t.Fatalf("503 carrier is retryable")
	}
	if IsRetryableError(statusErr(401)) {
		t.Fatalf("401 carrier is not retryable")
	}
	if IsRetryableError(errors.New("plain")) {
		t.Fatalf("unclassified errors are not retryable")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 3*time.Second {
		t.Fatalf("retry-after honored: got %v", got)
	}
	if got := RetryAfterDuration(resp, time.Second, 2*time.Second); got != 2*time.Second {
		t.Fatalf("retry-after bounded by max: got %v", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 10*time.Second); got != time.Second {
		t.Fatalf("fallback without response: got %v", got)
	}
}

func TestJitterSleepBounds(t *testing.T) {
	base := 2 * time.Second
	for i := 0; i < 100; i++ {
		d := JitterSleep(base)
		if d < 1600*time.Millisecond || d > 2400*time.Millisecond {
			t.Fatalf("jitter out of +-20%% band: %v", d)
		}
	}
	if JitterSleep(0) != 0 {
		t.Fatalf("zero base sleeps zero")
	}
}
