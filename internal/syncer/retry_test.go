package syncer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiangwan/chrome-outlook-calendar/internal/msauth"
	"github.com/jiangwan/chrome-outlook-calendar/internal/outlook"
)

// countingTokenSource hands out numbered tokens and counts refreshes.
type countingTokenSource struct {
	accessCalls  int
	refreshCalls int

	accessErr  error
	refreshErr error
}

func (s *countingTokenSource) AccessToken() (string, error) {
	s.accessCalls++
	if s.accessErr != nil {
		return "", s.accessErr
	}
	return "token-0", nil
}

func (s *countingTokenSource) SilentLogin(ctx context.Context) (string, error) {
	s.refreshCalls++
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	return "token-" + string(rune('0'+s.refreshCalls)), nil
}

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond, sleep: func(time.Duration) {}}
}

func TestRetryStopsAfterFirstSuccess(t *testing.T) {
	src := &countingTokenSource{}
	opCalls := 0

	err := testPolicy().Do(context.Background(), src, func(ctx context.Context, token string) error {
		opCalls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, opCalls)
	assert.Equal(t, 0, src.refreshCalls)
}

func TestRetryExhaustsRefreshBudget(t *testing.T) {
	src := &countingTokenSource{}
	opCalls := 0
	authErr := &outlook.APIError{StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized"}

	err := testPolicy().Do(context.Background(), src, func(ctx context.Context, token string) error {
		opCalls++
		return authErr
	})

	require.ErrorIs(t, err, authErr)
	// The operation runs once up front and once per refresh.
	assert.Equal(t, 4, opCalls)
	assert.Equal(t, 3, src.refreshCalls)
}

func TestRetryUsesRefreshedToken(t *testing.T) {
	src := &countingTokenSource{}
	var tokens []string

	err := testPolicy().Do(context.Background(), src, func(ctx context.Context, token string) error {
		tokens = append(tokens, token)
		if len(tokens) < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"token-0", "token-1", "token-2"}, tokens)
}

func TestRetryRefreshesWhenNoTokenCached(t *testing.T) {
	src := &countingTokenSource{accessErr: msauth.ErrUnauthenticated}
	opCalls := 0

	err := testPolicy().Do(context.Background(), src, func(ctx context.Context, token string) error {
		opCalls++
		return nil
	})

	// The missing token burns the first attempt; the refresh supplies one.
	require.NoError(t, err)
	assert.Equal(t, 1, opCalls)
	assert.Equal(t, 1, src.refreshCalls)
}

func TestRetryFailedRefreshKeepsCounting(t *testing.T) {
	src := &countingTokenSource{refreshErr: msauth.ErrUnauthenticated}
	opCalls := 0

	err := testPolicy().Do(context.Background(), src, func(ctx context.Context, token string) error {
		opCalls++
		return errors.New("transient")
	})

	// After the first failure every refresh fails, so the op never reruns
	// but the budget still drains.
	require.ErrorIs(t, err, msauth.ErrUnauthenticated)
	assert.Equal(t, 1, opCalls)
	assert.Equal(t, 3, src.refreshCalls)
}

func TestRetryHonorsContext(t *testing.T) {
	src := &countingTokenSource{}
	ctx, cancel := context.WithCancel(context.Background())

	err := testPolicy().Do(ctx, src, func(ctx context.Context, token string) error {
		cancel()
		return errors.New("transient")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, src.refreshCalls)
}

func TestIsAuthFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"unauthenticated", msauth.ErrUnauthenticated, true},
		{"wrapped unauthenticated", errors.Join(errors.New("ctx"), msauth.ErrUnauthenticated), true},
		{"api 401", &outlook.APIError{StatusCode: http.StatusUnauthorized}, true},
		{"api 500", &outlook.APIError{StatusCode: http.StatusInternalServerError}, false},
		{"provider refusal", &msauth.ProviderError{Code: "login_required"}, true},
		{"wrapped provider refusal", fmt.Errorf("authorization did not complete: %w", &msauth.ProviderError{Code: "interaction_required"}), true},
		{"decode error", &msauth.DecodeError{Reason: "bad fragment"}, true},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsAuthFailure(tc.err))
		})
	}
}
