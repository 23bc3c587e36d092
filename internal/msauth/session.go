package msauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jiangwan/chrome-outlook-calendar/internal/logger"
	"github.com/jiangwan/chrome-outlook-calendar/internal/security"
	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
)

// ErrUnauthenticated signals that no usable token exists. Callers surface a
// login prompt; nothing here prompts on its own.
var ErrUnauthenticated = errors.New("not authenticated")

// ProviderError is the provider explicitly refusing the authorization
// request through the error field of the redirect fragment (for example
// login_required on a silent refresh). It always means no session exists
// until the user signs in again.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned %q: %s", e.Code, e.Description)
}

// DefaultSilentTimeout bounds a hidden-surface refresh. If no qualifying
// redirect shows up before the deadline the surface is torn down and the
// refresh counts as failed.
const DefaultSilentTimeout = 3000 * time.Millisecond

// Config carries the registered application identity and flow parameters.
type Config struct {
	ClientID      string
	RedirectURI   string
	Scopes        []string
	Authority     string
	LoginHint     string
	DomainHint    string
	SilentTimeout time.Duration
}

// Session obtains, refreshes and invalidates tokens against the identity
// provider, persisting the result through the token store.
type Session struct {
	cfg  Config
	st   *store.Store
	nav  Navigator
	http *http.Client
	now  func() time.Time
}

// NewSession creates a session. A nil navigator defaults to the Chromium
// surface; tests inject fakes.
func NewSession(cfg Config, st *store.Store, nav Navigator) *Session {
	if cfg.Authority == "" {
		cfg.Authority = DefaultAuthority
	}
	if cfg.SilentTimeout <= 0 {
		cfg.SilentTimeout = DefaultSilentTimeout
	}
	if nav == nil {
		nav = ChromeNavigator{}
	}

	return &Session{
		cfg:  cfg,
		st:   st,
		nav:  nav,
		http: security.NewHTTPClient(0),
		now:  time.Now,
	}
}

// AccessToken returns the cached access token. It never prompts: an absent
// record resolves to ErrUnauthenticated.
func (s *Session) AccessToken() (string, error) {
	rec, err := s.st.LoadToken()
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token record: %w", err)
	}
	return rec.AccessToken, nil
}

// Profile returns the cached user profile and account domain.
func (s *Session) Profile() (*store.UserProfile, store.Domain, error) {
	rec, err := s.st.LoadToken()
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.DomainUnknown, ErrUnauthenticated
	}
	if err != nil {
		return nil, store.DomainUnknown, fmt.Errorf("failed to load token record: %w", err)
	}
	return &rec.User, rec.Domain, nil
}

// Login runs one authorization round-trip and persists the resulting token
// record wholesale. Interactive mode opens a visible browser window with a
// login prompt; silent mode uses a hidden surface with prompt=none and the
// fixed silent timeout.
func (s *Session) Login(ctx context.Context, interactive bool) (string, error) {
	nonce := newNonce()
	authURL := s.cfg.authorizeURL(nonce, interactive)

	navCtx := ctx
	if !interactive {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, s.cfg.SilentTimeout)
		defer cancel()
	}

	logger.Debug("starting authorization", "interactive", interactive)
	redirectURL, err := s.nav.Navigate(navCtx, authURL, s.cfg.RedirectURI, interactive)
	if err != nil {
		return "", fmt.Errorf("authorization did not complete: %w", err)
	}

	rec, err := s.tokenRecordFromRedirect(redirectURL)
	if err != nil {
		return "", err
	}

	if err := s.st.SaveToken(rec); err != nil {
		return "", fmt.Errorf("failed to persist token record: %w", err)
	}

	logger.Info("authorization succeeded", "domain", string(rec.Domain), "user", rec.User.PreferredUsername)
	return rec.AccessToken, nil
}

// SilentLogin refreshes the token without user interaction.
func (s *Session) SilentLogin(ctx context.Context) (string, error) {
	return s.Login(ctx, false)
}

// tokenRecordFromRedirect parses the fragment of the provider redirect into
// a token record. A result is valid only when it carries no error field,
// has an access token, and its id token decodes to claims whose audience
// matches the client id. Anything else discards the whole result.
func (s *Session) tokenRecordFromRedirect(redirectURL string) (*store.TokenRecord, error) {
	values, err := ParseFragment(redirectURL)
	if err != nil {
		return nil, err
	}

	if e := values.Get("error"); e != "" {
		return nil, &ProviderError{Code: e, Description: values.Get("error_description")}
	}

	accessToken := values.Get("access_token")
	if accessToken == "" {
		return nil, &DecodeError{Reason: "redirect fragment carries no access token"}
	}

	idToken := values.Get("id_token")
	profile, err := DecodeIDToken(idToken, s.cfg.ClientID)
	if err != nil {
		return nil, err
	}

	expiresIn, _ := strconv.Atoi(values.Get("expires_in"))

	return &store.TokenRecord{
		AccessToken: accessToken,
		IDToken:     idToken,
		ExpiresIn:   expiresIn,
		User:        *profile,
		Domain:      ClassifyDomain(profile.TenantID),
	}, nil
}

// Logout fires a best-effort unauthenticated request at the logout endpoint
// matching the cached domain, then unconditionally clears the store.
func (s *Session) Logout(ctx context.Context) error {
	domain := store.DomainUnknown
	if rec, err := s.st.LoadToken(); err == nil {
		domain = rec.Domain
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.logoutURL(domain), nil)
	if err == nil {
		if resp, reqErr := s.http.Do(req); reqErr != nil {
			logger.Warn("provider logout request failed", "error", reqErr)
		} else {
			resp.Body.Close()
		}
	}

	if err := s.st.Clear(); err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	return nil
}

// newNonce produces the per-request replay nonce: a GUID in RFC 4122 v4
// layout. It is compared, not kept secret.
func newNonce() string {
	return uuid.NewString()
}
