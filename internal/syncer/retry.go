package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/jiangwan/chrome-outlook-calendar/internal/logger"
	"github.com/jiangwan/chrome-outlook-calendar/internal/msauth"
	"github.com/jiangwan/chrome-outlook-calendar/internal/outlook"
)

// TokenSource yields access tokens. AccessToken reads the cached token and
// never prompts; SilentLogin refreshes it through the hidden surface.
type TokenSource interface {
	AccessToken() (string, error)
	SilentLogin(ctx context.Context) (string, error)
}

// RetryPolicy wraps an authenticated operation with bounded
// refresh-and-retry. Any failure with attempts remaining waits the backoff,
// requests a silent refresh and retries with the fresh token; after the
// last attempt the final error is handed back for terminal classification.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// DefaultRetryPolicy mirrors the stock limits: three refresh attempts
// spaced 100 ms apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Backoff: 100 * time.Millisecond}
}

// Do runs op with the current access token, refreshing and retrying on
// failure until the retry budget is spent.
func (p RetryPolicy) Do(ctx context.Context, src TokenSource, op func(ctx context.Context, accessToken string) error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	token, err := src.AccessToken()
	for attempt := 0; ; attempt++ {
		if err == nil {
			err = op(ctx, token)
			if err == nil {
				return nil
			}
		}

		if attempt >= p.MaxRetries {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		logger.Debug("operation failed, refreshing token", "attempt", attempt+1, "error", err)
		sleep(p.Backoff)
		token, err = src.SilentLogin(ctx)
	}
}

// IsAuthFailure reports whether err means the session is not (or no
// longer) authorized, as opposed to a transient network or server problem.
func IsAuthFailure(err error) bool {
	if errors.Is(err, msauth.ErrUnauthenticated) {
		return true
	}
	var apiErr *outlook.APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsAuthError()
	}
	var providerErr *msauth.ProviderError
	if errors.As(err, &providerErr) {
		return true
	}
	var decodeErr *msauth.DecodeError
	return errors.As(err, &decodeErr)
}
