package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

var ErrEmptyResponse = errors.New("empty response")

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type retrying struct {
	next     Completer
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// WithRetry retries transient failures and empty answers, waiting backoff*(i+1) between tries.
func WithRetry(c Completer, attempts int, backoff time.Duration, logger *slog.Logger) Completer {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &retrying{next: c, attempts: attempts, backoff: backoff, logger: logger}
}

func (r *retrying) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i := 0; i < r.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(r.backoff * time.Duration(i)):
			}
		}
		out, err := r.next.Complete(ctx, prompt)
		if err == nil && strings.TrimSpace(out) != "" {
			return out, nil
		}
		if err == nil {
			err = ErrEmptyResponse
		}
		lastErr = err
		if !errors.Is(err, ErrEmptyResponse) && !Retriable(err) {
			return "", err
		}
		r.logger.Warn("llm call failed, retrying", "attempt", i+1, "error", err)
	}
	return "", lastErr
}

func Retriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, marker := range []string{
		"unexpected eof",
		"timeout",
		"rst_stream",
		"connection reset",
		"status code: 429",
		"status code: 500",
		"status code: 502",
		"status code: 503",
		"status code: 504",
		"rate limit",
	} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
