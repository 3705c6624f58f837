// Package authn orchestrates the session lifecycle: login, signup, logout,
// verification at app start, and token refresh. It owns the decision of
// when session state is persisted or cleared and when a failed call is
// answered with synthetic demo data instead of an error.
package authn

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/learnkit/learnkit-go/client"
	"github.com/learnkit/learnkit-go/fallback"
	interrors "github.com/learnkit/learnkit-go/internal/errors"
	"github.com/learnkit/learnkit-go/profile"
	"github.com/learnkit/learnkit-go/session"
)

// currentUserKey is the fixed cache key for the logged-in user's profile.
const currentUserKey = "users/me"

// Credentials are submitted once on login or signup and never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the wire shape of /auth/login, /auth/signup and
// /auth/refresh.
type authResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	User         profile.Profile `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Manager drives the session state machine. All session mutations go
// through the injected session.Store; the profile cache is invalidated
// wholesale on logout.
type Manager struct {
	api   *client.Client
	store session.Store
	demo  bool
	delay time.Duration
	log   zerolog.Logger

	cacheLock sync.RWMutex
	cache     map[string]*profile.Profile
}

// Option modifies a Manager at construction.
type Option func(*Manager)

// WithDemoMode controls whether failed auth calls fall back to synthetic
// demo sessions. Off means failures are surfaced as errors.
func WithDemoMode(on bool) Option {
	return func(m *Manager) { m.demo = on }
}

// WithFallbackDelay overrides the simulated delay before demo responses.
func WithFallbackDelay(d time.Duration) Option {
	return func(m *Manager) { m.delay = d }
}

// WithLogger sets the manager's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New creates a Manager on top of the resilient client and wires its
// refresh operation into the client's 401 response path.
func New(api *client.Client, store session.Store, options ...Option) *Manager {
	m := &Manager{
		api:   api,
		store: store,
		demo:  true,
		delay: fallback.DefaultDelay,
		log:   zerolog.Nop(),
		cache: make(map[string]*profile.Profile),
	}
	for _, opt := range options {
		opt(m)
	}
	api.SetRefreshFunc(m.backendRefresh)
	return m
}

// Login exchanges credentials for a session. Success persists the token
// pair and role and caches the profile. Rejected credentials leave the
// session untouched and return a SourceRejected result. An unreachable
// backend yields a deterministic demo session (when demo mode is on), so a
// non-rejected Login never leaves the session empty.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*Result, error) {
	return m.authenticate(ctx, "/auth/login", creds)
}

// Signup registers a new account. The backend logs the user straight in, so
// the response and semantics match Login.
func (m *Manager) Signup(ctx context.Context, creds Credentials) (*Result, error) {
	return m.authenticate(ctx, "/auth/signup", creds)
}

func (m *Manager) authenticate(ctx context.Context, path string, creds Credentials) (*Result, error) {
	var resp authResponse
	err := m.api.PostJSON(ctx, path, creds, &resp, client.NoAuthRetry())

	switch {
	case err == nil && resp.AccessToken != "" && resp.RefreshToken != "":
		pair := &oauth2.Token{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			TokenType:    session.TokenTypeBearer,
		}
		session.SetTokenPair(m.store, pair)
		m.store.Set(session.KeyRole, resp.User.Role)
		m.cacheProfile(&resp.User)
		return &Result{Source: SourceBackend, User: &resp.User, Token: pair}, nil

	case client.IsUnauthorized(err) || client.IsClientError(err):
		// Bad credentials or rejected input. Not a backend outage, so no
		// demo fallback: surface the rejection.
		m.log.Info().Int("status", client.StatusCode(err)).Str("email", creds.Email).Msg("credentials rejected")
		return &Result{Source: SourceRejected}, nil

	default:
		if !m.demo {
			return nil, errors.Wrapf(err, "[Manager.authenticate] %s", path)
		}
		m.log.Warn().Err(err).Msg("auth backend unavailable, starting demo session")
		if err := fallback.Sleep(ctx, m.delay); err != nil {
			return nil, err
		}
		pair := DemoTokenPair(creds.Email)
		prof := profile.Synthetic(creds.Email)
		session.SetTokenPair(m.store, pair)
		m.store.Set(session.KeyRole, prof.Role)
		m.cacheProfile(prof)
		return &Result{Source: SourceDemo, User: prof, Token: pair}, nil
	}
}

// Logout ends the session. The backend call is best-effort; whatever it
// does, the token pair, role and profile cache are gone afterwards.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.PostJSON(ctx, "/auth/logout", nil, nil, client.NoAuthRetry()); err != nil {
		m.log.Warn().Err(err).Msg("logout call failed, clearing session anyway")
	}
	session.ClearTokenPair(m.store)
	m.store.Clear(session.KeyRole)
	m.clearCache()
}

// Verify validates a persisted token at application start. A definitive
// rejection clears the whole session; an unreachable backend keeps the
// tokens and serves a synthetic profile so the shell still renders.
func (m *Manager) Verify(ctx context.Context) (*Result, error) {
	if !session.HasSession(m.store) {
		return nil, interrors.ErrNoSession
	}

	var prof profile.Profile
	err := m.api.GetJSON(ctx, "/auth/verify", &prof)

	switch {
	case err == nil && prof.ID != "":
		m.store.Set(session.KeyRole, prof.Role)
		m.cacheProfile(&prof)
		return &Result{Source: SourceBackend, User: &prof}, nil

	case client.IsUnauthorized(err):
		// The client already cleared the token pair; drop the rest so no
		// guard sees a half-dead session.
		m.store.Clear(session.KeyRole)
		m.clearCache()
		return &Result{Source: SourceRejected}, nil

	default:
		if !m.demo {
			m.clearCache()
			return nil, errors.Wrap(err, "[Manager.Verify]")
		}
		m.log.Warn().Err(err).Msg("verify unreachable, keeping session with demo profile")
		if err := fallback.Sleep(ctx, m.delay); err != nil {
			return nil, err
		}
		synthetic := profile.Synthetic(m.sessionEmail())
		m.cacheProfile(synthetic)
		return &Result{Source: SourceDemo, User: synthetic}, nil
	}
}

// Refresh exchanges the stored refresh token for a new pair. It fails fast
// when there is no refresh token and does not touch the store in that case.
// A backend failure falls back to a demo pair when demo mode is on.
func (m *Manager) Refresh(ctx context.Context) (*oauth2.Token, error) {
	if rt, ok := m.store.Get(session.KeyRefreshToken); !ok || rt == "" {
		return nil, interrors.ErrNoRefreshToken
	}

	pair, err := m.refreshFromBackend(ctx)
	if err == nil {
		return pair, nil
	}
	if !m.demo {
		return nil, err
	}

	m.log.Warn().Err(err).Msg("refresh failed, issuing demo token pair")
	if err := fallback.Sleep(ctx, m.delay); err != nil {
		return nil, err
	}
	demoPair := DemoTokenPair(m.sessionEmail())
	session.SetTokenPair(m.store, demoPair)
	return demoPair, nil
}

// refreshFromBackend performs the real /auth/refresh exchange and persists
// the rotated pair.
func (m *Manager) refreshFromBackend(ctx context.Context) (*oauth2.Token, error) {
	rt, ok := m.store.Get(session.KeyRefreshToken)
	if !ok || rt == "" {
		return nil, interrors.ErrNoRefreshToken
	}

	var resp authResponse
	if err := m.api.PostJSON(ctx, "/auth/refresh", refreshRequest{RefreshToken: rt}, &resp, client.NoAuthRetry()); err != nil {
		return nil, errors.Wrap(err, "[Manager.refreshFromBackend]")
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return nil, interrors.Wrapf(interrors.ErrMalformedResponse, "[Manager.refreshFromBackend] token pair incomplete")
	}

	pair := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    session.TokenTypeBearer,
	}
	session.SetTokenPair(m.store, pair)
	return pair, nil
}

// backendRefresh is the client.RefreshFunc wired into the 401 response
// path. It deliberately skips the demo fallback: a synthetic token cannot
// rescue a request the backend just rejected.
func (m *Manager) backendRefresh(ctx context.Context) (string, error) {
	pair, err := m.refreshFromBackend(ctx)
	if err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}

// CurrentUser returns the cached profile for the session, or nil.
func (m *Manager) CurrentUser() *profile.Profile {
	m.cacheLock.RLock()
	defer m.cacheLock.RUnlock()
	return m.cache[currentUserKey]
}

func (m *Manager) cacheProfile(p *profile.Profile) {
	m.cacheLock.Lock()
	defer m.cacheLock.Unlock()
	m.cache[currentUserKey] = p
}

func (m *Manager) clearCache() {
	m.cacheLock.Lock()
	defer m.cacheLock.Unlock()
	m.cache = make(map[string]*profile.Profile)
}

// sessionEmail recovers the user's email from the cached profile or the
// access token claims, falling back to the demo identity.
func (m *Manager) sessionEmail() string {
	if p := m.CurrentUser(); p != nil && p.Email != "" {
		return p.Email
	}
	if access, ok := m.store.Get(session.KeyAccessToken); ok {
		if email := emailClaim(access); email != "" {
			return email
		}
	}
	return profile.DemoEmail
}
