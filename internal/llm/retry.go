package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"lifeway-backend/internal/shared/telemetry"
)

const DefaultRetryDelay = 300 * time.Millisecond

type retrying struct {
	base  Completer
	delay time.Duration
}

// WithRetry wraps base so a transient failure is retried exactly once.
func WithRetry(base Completer, delay time.Duration) Completer {
	if base == nil {
		return nil
	}
	if delay < 0 {
		delay = 0
	}
	return retrying{base: base, delay: delay}
}

func (r retrying) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	out, err := r.base.Complete(ctx, prompt)
	if err == nil || !ShouldRetry(err) || ctx.Err() != nil {
		return out, err
	}

	telemetry.Warn("llm.retry", map[string]any{"attempt": 1, "error": err})
	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return Completion{}, ctx.Err()
	}

	return r.base.Complete(ctx, prompt)
}

// ShouldRetry reports whether err is a timeout, a provider 5xx or a dropped connection.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "client.timeout") {
		return true
	}
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unexpected eof")
}
