// Package app wires the sync core together and exposes it to presentation
// surfaces through the typed request protocol.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jiangwan/chrome-outlook-calendar/internal/agenda"
	"github.com/jiangwan/chrome-outlook-calendar/internal/bus"
	"github.com/jiangwan/chrome-outlook-calendar/internal/config"
	"github.com/jiangwan/chrome-outlook-calendar/internal/logger"
	"github.com/jiangwan/chrome-outlook-calendar/internal/msauth"
	"github.com/jiangwan/chrome-outlook-calendar/internal/outlook"
	"github.com/jiangwan/chrome-outlook-calendar/internal/store"
	"github.com/jiangwan/chrome-outlook-calendar/internal/syncer"
)

// App is the assembled core: token store, auth session, API client and
// syncer sharing one bus.
type App struct {
	Config *config.Config
	Store  *store.Store
	Auth   *msauth.Session
	API    *outlook.Client
	Syncer *syncer.Syncer
	Bus    *bus.Bus

	days int
}

// New assembles the core from configuration. stateDir overrides the
// default state directory when non-empty.
func New(cfg *config.Config, stateDir string) (*App, error) {
	st, err := store.New(stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	auth := msauth.NewSession(msauth.Config{
		ClientID:      cfg.OAuth.ClientID,
		RedirectURI:   cfg.OAuth.RedirectURI,
		Scopes:        cfg.OAuth.Scopes,
		Authority:     cfg.OAuth.Authority,
		LoginHint:     cfg.OAuth.LoginHint,
		DomainHint:    cfg.OAuth.DomainHint,
		SilentTimeout: time.Duration(cfg.OAuth.SilentTimeoutMS) * time.Millisecond,
	}, st, nil)

	api := outlook.NewClient(cfg.API.BaseURL)
	b := bus.New()

	sy := syncer.New(auth, api, st, b, &syncer.Options{
		Days: cfg.Sync.DaysToObserve,
		Retry: syncer.RetryPolicy{
			MaxRetries: cfg.Sync.RetryLimit,
			Backoff:    time.Duration(cfg.Sync.RetryBackoffMS) * time.Millisecond,
		},
	})

	return &App{
		Config: cfg,
		Store:  st,
		Auth:   auth,
		API:    api,
		Syncer: sy,
		Bus:    b,
		days:   cfg.Sync.DaysToObserve,
	}, nil
}

// Handle serves one typed request from a presentation surface.
func (a *App) Handle(ctx context.Context, req bus.Request) (any, error) {
	switch r := req.(type) {
	case bus.GetAccessToken:
		return a.Auth.AccessToken()

	case bus.ForceLogin:
		if _, err := a.Auth.Login(ctx, true); err != nil {
			return nil, err
		}
		profile, domain, err := a.Auth.Profile()
		if err != nil {
			return nil, err
		}
		a.Bus.Publish(bus.AuthStatusChanged{Authorized: true, Domain: domain})
		// The fresh session immediately populates the snapshot. The login
		// itself already succeeded, so a failed sync only logs.
		if err := a.Syncer.Sync(ctx); err != nil {
			logger.Warn("initial sync after login failed", "error", err)
		}
		return profile, nil

	case bus.ClearSession:
		if err := a.Auth.Logout(ctx); err != nil {
			return nil, err
		}
		a.Bus.Publish(bus.AuthStatusChanged{Authorized: false})
		return nil, nil

	case bus.GetUserProfile:
		profile, _, err := a.Auth.Profile()
		return profile, err

	case bus.GetUserPhoto:
		return a.userPhoto(ctx)

	case bus.RequestCalendarSync:
		return nil, a.Syncer.Sync(ctx)

	case bus.GetCachedEvents:
		return a.cachedEvents(r.Today)

	default:
		return nil, fmt.Errorf("unsupported request type %T", req)
	}
}

// userPhoto serves the cached photo data URL, fetching and caching it on a
// miss.
func (a *App) userPhoto(ctx context.Context) (string, error) {
	if dataURL, err := a.Store.LoadPhoto(); err == nil {
		return dataURL, nil
	}

	token, err := a.Auth.AccessToken()
	if err != nil {
		return "", err
	}

	dataURL, err := a.API.UserPhoto(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user photo: %w", err)
	}
	if err := a.Store.SavePhoto(dataURL); err != nil {
		return "", fmt.Errorf("failed to cache user photo: %w", err)
	}
	return dataURL, nil
}

// cachedEvents reads the snapshot and recomputes its day index.
func (a *App) cachedEvents(today time.Time) (*bus.CachedEvents, error) {
	snapshot, err := a.Store.LoadEvents()
	if errors.Is(err, store.ErrNotFound) {
		snapshot = &store.EventSnapshot{Events: []store.EventRecord{}}
	} else if err != nil {
		return nil, err
	}

	if today.IsZero() {
		today = time.Now()
	}

	return &bus.CachedEvents{
		Events:   snapshot.Events,
		Buckets:  agenda.Index(snapshot.Events, today, a.days),
		LastSync: snapshot.LastSync,
	}, nil
}

// Days returns the configured observation window length.
func (a *App) Days() int {
	return a.days
}
