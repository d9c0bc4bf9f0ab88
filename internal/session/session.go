package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/utafrali/sellerdesk/internal/client"
	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
)

// ExpiredMessage is shown when the refresh step fails.
const ExpiredMessage = "Session expired, please log in again"

// DefaultAccessCookie is the backend's access-token cookie name.
const DefaultAccessCookie = "accessToken"

// API is the part of the seller backend the session flow needs.
type API interface {
	VerifyUser(ctx context.Context) (client.Verification, error)
	RefreshToken(ctx context.Context) error
	Cookie(name string) (*http.Cookie, bool)
}

// State is the seller's login state as last observed.
type State struct {
	UserID    string    `json:"user_id,omitempty"`
	LoggedIn  bool      `json:"logged_in"`
	Checking  bool      `json:"checking"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	CheckedAt time.Time `json:"checked_at,omitzero"`
}

// Config tunes a Manager.
type Config struct {
	// AccessCookie names the access-token cookie to inspect.
	AccessCookie string
	// RecheckAfter bounds how long a successful verification is trusted.
	RecheckAfter time.Duration
}

// Manager runs the verify/refresh flow and remembers its outcome. Safe for
// concurrent use; concurrent Verify calls each talk to the backend.
type Manager struct {
	api    API
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	state State
}

// NewManager creates a session manager.
func NewManager(api API, cfg Config, logger *slog.Logger) *Manager {
	if cfg.AccessCookie == "" {
		cfg.AccessCookie = DefaultAccessCookie
	}
	if cfg.RecheckAfter <= 0 {
		cfg.RecheckAfter = time.Minute
	}
	return &Manager{
		api:    api,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// step is where the verify flow stands.
type step int

const (
	stepVerify step = iota
	stepReverify
)

// Verify asks the backend who is logged in. A 401 triggers exactly one
// refresh followed by one more verify. A failed refresh logs the seller out
// and returns an ErrSessionExpired error; success:false logs the seller out
// without an error.
func (m *Manager) Verify(ctx context.Context) (State, error) {
	m.setChecking(true)

	st := stepVerify
	if m.accessTokenExpired() {
		m.logger.DebugContext(ctx, "access token expired locally, refreshing first")
		if err := m.refresh(ctx); err != nil {
			return m.fail(err)
		}
		st = stepReverify
	}

	for {
		v, err := m.api.VerifyUser(ctx)
		switch {
		case err == nil:
			return m.settle(v), nil
		case st == stepVerify && errors.Is(err, apperrors.ErrUnauthorized):
			if err := m.refresh(ctx); err != nil {
				return m.fail(err)
			}
			st = stepReverify
		default:
			return m.fail(err)
		}
	}
}

// SellerID returns the logged-in seller, verifying again once the last
// successful check is older than RecheckAfter. It returns "" with a nil error
// when nobody is logged in.
func (m *Manager) SellerID(ctx context.Context) (string, error) {
	s := m.State()
	if s.LoggedIn && m.now().Sub(s.CheckedAt) < m.cfg.RecheckAfter {
		return s.UserID, nil
	}
	s, err := m.Verify(ctx)
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}

// Invalidate forces the next SellerID call to talk to the backend.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.CheckedAt = time.Time{}
}

func (m *Manager) refresh(ctx context.Context) error {
	if err := m.api.RefreshToken(ctx); err != nil {
		m.logger.WarnContext(ctx, "session refresh failed", slog.String("error", err.Error()))
		return apperrors.SessionExpired(ExpiredMessage)
	}
	return nil
}

func (m *Manager) accessTokenExpired() bool {
	claims := m.token()
	if claims == nil {
		return false
	}
	exp := claims.Expiry()
	return !exp.IsZero() && !m.now().Before(exp)
}

// token returns the claims of the access cookie, or nil when there is no
// readable token.
func (m *Manager) token() *Claims {
	ck, ok := m.api.Cookie(m.cfg.AccessCookie)
	if !ok {
		return nil
	}
	claims, err := InspectToken(ck.Value)
	if err != nil {
		return nil
	}
	return claims
}

func (m *Manager) settle(v client.Verification) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = State{CheckedAt: m.now()}
	if !v.Success {
		return m.state
	}

	m.state.LoggedIn = true
	m.state.UserID = v.UserID
	if claims := m.token(); claims != nil {
		m.state.ExpiresAt = claims.Expiry()
		if m.state.UserID == "" {
			m.state.UserID = claims.Seller()
		}
	}
	return m.state
}

func (m *Manager) fail(err error) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{CheckedAt: m.now()}
	return m.state, err
}

func (m *Manager) setChecking(checking bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Checking = checking
}
