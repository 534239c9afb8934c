package telegram

import (
	"context"
	"errors"
	"net"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestShouldRetry(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	if !shouldRetry(dialErr) {
		t.Error("dial error must be retryable")
	}
	if !shouldRetry(&url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dialErr}) {
		t.Error("wrapped dial error must be retryable")
	}
	if shouldRetry(errors.New("telegram: bad request (400)")) {
		t.Error("API error must not be retryable")
	}
	if shouldRetry(nil) {
		t.Error("nil must not be retryable")
	}
}

func TestRedactToken(t *testing.T) {
	err := errors.New("Post https://api.telegram.org/bot123456:AAAbbbCCC-dd_ee/sendMessage: timeout")
	got := redactToken(err)
	if got != "Post https://api.telegram.org/bot<redacted>/sendMessage: timeout" {
		t.Fatalf("redacted = %q", got)
	}
}

func TestClassifySendError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{&net.OpError{Op: "dial", Err: errors.New("refused")}, "dial"},
		{&net.DNSError{Name: "api.telegram.org"}, "dns"},
		{&tele.Error{Code: 502, Description: "bad gateway"}, "http_5xx"},
		{&tele.Error{Code: 403, Description: "forbidden"}, "http_4xx"},
		{errors.New("something odd"), "unknown"},
	}
	for _, tc := range cases {
		if got := classifySendError(tc.err); got != tc.want {
			t.Errorf("classifySendError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{Workers: 2, QueueSize: 8})
	var ran atomic.Int32

	for i := 0; i < 5; i++ {
		err := d.Enqueue(context.Background(), "send.text", func() error {
			ran.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	d.Close()

	if got := ran.Load(); got != 5 {
		t.Fatalf("ran = %d, want 5", got)
	}
	if d.ErrorCount() != 0 {
		t.Fatalf("errors = %d", d.ErrorCount())
	}
}

func TestDispatcherRetriesTransientFailure(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{
		Workers:      1,
		QueueSize:    1,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	})
	var calls atomic.Int32

	err := d.Enqueue(context.Background(), "send.text", func() error {
		if calls.Add(1) < 3 {
			return &net.OpError{Op: "dial", Err: errors.New("refused")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()

	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
	if d.ErrorCount() != 0 {
		t.Fatalf("errors = %d, want success after retries", d.ErrorCount())
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{Workers: 1, QueueSize: 1})
	block := make(chan struct{})

	_ = d.Enqueue(context.Background(), "send.text", func() error {
		<-block
		return nil
	})
	// Fill the single queue slot, then the next enqueue must be rejected.
	_ = d.Enqueue(context.Background(), "send.text", func() error { return nil })

	var full bool
	for i := 0; i < 10; i++ {
		if err := d.Enqueue(context.Background(), "send.text", func() error { return nil }); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	close(block)
	d.Close()

	if !full {
		t.Fatal("saturated queue never returned ErrQueueFull")
	}
}
