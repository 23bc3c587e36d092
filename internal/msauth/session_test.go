package msauth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// fakeNavigator answers every round-trip with a canned redirect URL and
// records what it was asked to do.
type fakeNavigator struct {
	redirect string
	err      error

	gotAuthURL  string
	gotPrefix   string
	gotVisible  bool
	hadDeadline bool
}

func (f *fakeNavigator) Navigate(ctx context.Context, authURL, redirectPrefix string, visible bool) (string, error) {
	f.gotAuthURL = authURL
	f.gotPrefix = redirectPrefix
	f.gotVisible = visible
	_, f.hadDeadline = ctx.Deadline()

	if f.err != nil {
		return "", f.err
	}
	return f.redirect, nil
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testConfig() Config {
	return Config{
		ClientID:    testClientID,
		RedirectURI: "https://login.live.com/oauth20_desktop.srf",
		Scopes:      []string{"openid", "profile"},
	}
}

func newTestSession(t *testing.T, nav Navigator) (*Session, *store.Store) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return NewSession(testConfig(), st, nav), st
}

// redirectFor builds the provider redirect carrying the given claims.
func redirectFor(t *testing.T, claims map[string]any) string {
	t.Helper()

	q := url.Values{}
	q.Set("access_token", "EwB4A-access")
	q.Set("id_token", makeIDToken(t, claims))
	q.Set("expires_in", "3600")
	return "https://login.live.com/oauth20_desktop.srf#" + q.Encode()
}

func TestLoginInteractive(t *testing.T) {
	nav := &fakeNavigator{redirect: redirectFor(t, map[string]any{
		"aud":                testClientID,
		"name":               "Jane Roe",
		"preferred_username": "jane@example.com",
		"tid":                "9188040d-6c67-4c5b-b112-36a304b66dad",
	})}
	s, st := newTestSession(t, nav)

	token, err := s.Login(context.Background(), true)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token != "EwB4A-access" {
		t.Errorf("Expected access token from fragment, got %q", token)
	}

	if !nav.gotVisible {
		t.Error("Interactive login should use a visible surface")
	}
	if nav.hadDeadline {
		t.Error("Interactive login should not carry the silent timeout")
	}
	if nav.gotPrefix != "https://login.live.com/oauth20_desktop.srf" {
		t.Errorf("Unexpected redirect prefix %q", nav.gotPrefix)
	}
	if !strings.Contains(nav.gotAuthURL, "prompt=login") {
		t.Errorf("Expected prompt=login in auth URL, got %s", nav.gotAuthURL)
	}

	rec, err := st.LoadToken()
	if err != nil {
		t.Fatalf("Token record not persisted: %v", err)
	}
	if rec.Domain != store.DomainConsumers {
		t.Errorf("Expected consumers domain, got %q", rec.Domain)
	}
	if rec.User.Name != "Jane Roe" || rec.ExpiresIn != 3600 {
		t.Errorf("Unexpected persisted record %+v", rec)
	}
}

func TestLoginClassifiesOrganizations(t *testing.T) {
	nav := &fakeNavigator{redirect: redirectFor(t, map[string]any{
		"aud": testClientID,
		"tid": "f8cdef31-a31e-4b4a-93e4-5f571e91255a",
	})}
	s, st := newTestSession(t, nav)

	if _, err := s.Login(context.Background(), true); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	rec, err := st.LoadToken()
	if err != nil {
		t.Fatalf("Token record not persisted: %v", err)
	}
	if rec.Domain != store.DomainOrganizations {
		t.Errorf("Expected organizations domain, got %q", rec.Domain)
	}
}

func TestSilentLoginBoundsTheSurface(t *testing.T) {
	nav := &fakeNavigator{redirect: redirectFor(t, map[string]any{"aud": testClientID})}
	s, _ := newTestSession(t, nav)

	if _, err := s.SilentLogin(context.Background()); err != nil {
		t.Fatalf("SilentLogin failed: %v", err)
	}

	if nav.gotVisible {
		t.Error("Silent login should use a hidden surface")
	}
	if !nav.hadDeadline {
		t.Error("Silent login should carry a deadline")
	}
	if !strings.Contains(nav.gotAuthURL, "prompt=none") {
		t.Errorf("Expected prompt=none in auth URL, got %s", nav.gotAuthURL)
	}
}

func TestLoginProviderError(t *testing.T) {
	nav := &fakeNavigator{
		redirect: "https://login.live.com/oauth20_desktop.srf#error=interaction_required&error_description=user+interaction+required",
	}
	s, st := newTestSession(t, nav)

	_, err := s.Login(context.Background(), false)
	if err == nil {
		t.Fatal("Expected error from provider error field, got nil")
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected *ProviderError, got %T: %v", err, err)
	}
	if provErr.Code != "interaction_required" {
		t.Errorf("Expected code interaction_required, got %q", provErr.Code)
	}
	if !strings.Contains(err.Error(), "interaction_required") {
		t.Errorf("Expected provider error code in message, got %v", err)
	}

	if _, err := st.LoadToken(); !errors.Is(err, store.ErrNotFound) {
		t.Error("Failed login must not persist a token record")
	}
}

func TestLoginMissingAccessToken(t *testing.T) {
	nav := &fakeNavigator{redirect: "https://login.live.com/oauth20_desktop.srf#id_token=only"}
	s, _ := newTestSession(t, nav)

	_, err := s.Login(context.Background(), true)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Expected *DecodeError for missing access token, got %v", err)
	}
}

func TestLoginNavigatorFailure(t *testing.T) {
	nav := &fakeNavigator{err: context.DeadlineExceeded}
	s, _ := newTestSession(t, nav)

	if _, err := s.Login(context.Background(), false); err == nil {
		t.Fatal("Expected error when the surface times out, got nil")
	}
}

func TestAccessTokenWithoutSession(t *testing.T) {
	s, _ := newTestSession(t, &fakeNavigator{})

	if _, err := s.AccessToken(); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
	if _, _, err := s.Profile(); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated from Profile, got %v", err)
	}
}

func TestLogoutClearsStateAndPicksEndpoint(t *testing.T) {
	nav := &fakeNavigator{redirect: redirectFor(t, map[string]any{
		"aud": testClientID,
		"tid": "9188040d-6c67-4c5b-b112-36a304b66dad",
	})}
	s, st := newTestSession(t, nav)

	if _, err := s.Login(context.Background(), true); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	var logoutURL string
	s.http.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		logoutURL = req.URL.String()
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if !strings.Contains(logoutURL, "/consumers/oauth2/v2.0/logout") {
		t.Errorf("Expected consumers logout endpoint, got %s", logoutURL)
	}
	if _, err := st.LoadToken(); !errors.Is(err, store.ErrNotFound) {
		t.Error("Logout must clear the token record")
	}
}

func TestLogoutSurvivesProviderOutage(t *testing.T) {
	nav := &fakeNavigator{redirect: redirectFor(t, map[string]any{"aud": testClientID})}
	s, st := newTestSession(t, nav)

	if _, err := s.Login(context.Background(), true); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	s.http.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	s.http.Timeout = time.Second

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("Logout must clear local state even when the provider is down: %v", err)
	}
	if _, err := st.LoadToken(); !errors.Is(err, store.ErrNotFound) {
		t.Error("Logout must clear the token record")
	}
}
