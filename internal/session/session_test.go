package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/sellerdesk/internal/client"
	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type fakeAPI struct {
	verify     []func() (client.Verification, error)
	refreshErr error
	cookie     *http.Cookie

	verifyCalls  int
	refreshCalls int
	calls        []string
}

func (f *fakeAPI) VerifyUser(context.Context) (client.Verification, error) {
	f.calls = append(f.calls, "verify")
	i := f.verifyCalls
	f.verifyCalls++
	if i >= len(f.verify) {
		return client.Verification{}, errors.New("unexpected verify call")
	}
	return f.verify[i]()
}

func (f *fakeAPI) RefreshToken(context.Context) error {
	f.calls = append(f.calls, "refresh")
	f.refreshCalls++
	return f.refreshErr
}

func (f *fakeAPI) Cookie(name string) (*http.Cookie, bool) {
	if f.cookie == nil || f.cookie.Name != name {
		return nil, false
	}
	return f.cookie, true
}

func ok(userID string) func() (client.Verification, error) {
	return func() (client.Verification, error) {
		return client.Verification{Success: true, Message: "verified", UserID: userID}, nil
	}
}

func loggedOut() func() (client.Verification, error) {
	return func() (client.Verification, error) {
		return client.Verification{Success: false, Message: "no session"}, nil
	}
}

func unauthorized() func() (client.Verification, error) {
	return func() (client.Verification, error) {
		return client.Verification{}, apperrors.Unauthorized("Access token expired")
	}
}

func newTestManager(api API) *Manager {
	m := NewManager(api, Config{RecheckAfter: time.Minute}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.now = func() time.Time { return testNow }
	return m
}

func signToken(t *testing.T, userID string, exp time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func TestVerify_LoggedIn(t *testing.T) {
	api := &fakeAPI{verify: []func() (client.Verification, error){ok("seller-1")}}
	m := newTestManager(api)

	s, err := m.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, s.LoggedIn)
	assert.False(t, s.Checking)
	assert.Equal(t, "seller-1", s.UserID)
	assert.Equal(t, []string{"verify"}, api.calls)
	assert.Equal(t, s, m.State())
}

func TestVerify_SuccessFalseLogsOutWithoutError(t *testing.T) {
	api := &fakeAPI{verify: []func() (client.Verification, error){loggedOut()}}
	m := newTestManager(api)

	s, err := m.Verify(context.Background())
	require.NoError(t, err)
	assert.False(t, s.LoggedIn)
	assert.Empty(t, s.UserID)
}

func TestVerify_UnauthorizedRefreshesOnceThenReverifies(t *testing.T) {
	api := &fakeAPI{verify: []func() (client.Verification, error){unauthorized(), ok("seller-1")}}
	m := newTestManager(api)

	s, err := m.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, s.LoggedIn)
	assert.Equal(t, []string{"verify", "refresh", "verify"}, api.calls)
}

func TestVerify_RefreshFailureExpiresSession(t *testing.T) {
	api := &fakeAPI{
		verify:     []func() (client.Verification, error){unauthorized()},
		refreshErr: apperrors.Unauthorized("Refresh token expired"),
	}
	m := newTestManager(api)

	s, err := m.Verify(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSessionExpired))
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ExpiredMessage, appErr.Message)
	assert.False(t, s.LoggedIn)
	assert.Equal(t, []string{"verify", "refresh"}, api.calls)
}

func TestVerify_SecondUnauthorizedDoesNotRefreshAgain(t *testing.T) {
	api := &fakeAPI{verify: []func() (client.Verification, error){unauthorized(), unauthorized()}}
	m := newTestManager(api)

	s, err := m.Verify(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.False(t, errors.Is(err, apperrors.ErrSessionExpired))
	assert.False(t, s.LoggedIn)
	assert.Equal(t, 1, api.refreshCalls)
	assert.Equal(t, 2, api.verifyCalls)
}

func TestVerify_OtherErrorsSkipRefresh(t *testing.T) {
	api := &fakeAPI{verify: []func() (client.Verification, error){
		func() (client.Verification, error) { return client.Verification{}, apperrors.Unavailable("down") },
	}}
	m := newTestManager(api)

	_, err := m.Verify(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
	assert.Equal(t, 0, api.refreshCalls)
}

func TestVerify_ExpiredTokenRefreshesFirst(t *testing.T) {
	api := &fakeAPI{
		verify: []func() (client.Verification, error){unauthorized()},
		cookie: &http.Cookie{Name: DefaultAccessCookie, Value: signToken(t, "seller-1", testNow.Add(-time.Minute))},
	}
	m := newTestManager(api)

	_, err := m.Verify(context.Background())
	require.Error(t, err)
	// Refresh already happened; the 401 after it is final.
	assert.Equal(t, []string{"refresh", "verify"}, api.calls)
}

func TestVerify_ReadsExpiryAndSellerFromToken(t *testing.T) {
	exp := testNow.Add(15 * time.Minute)
	api := &fakeAPI{
		verify: []func() (client.Verification, error){ok("")},
		cookie: &http.Cookie{Name: DefaultAccessCookie, Value: signToken(t, "seller-from-token", exp)},
	}
	m := newTestManager(api)

	s, err := m.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "seller-from-token", s.UserID)
	assert.True(t, s.ExpiresAt.Equal(exp))
	assert.Equal(t, []string{"verify"}, api.calls)
}

func TestVerify_UnreadableTokenIsIgnored(t *testing.T) {
	api := &fakeAPI{
		verify: []func() (client.Verification, error){ok("seller-1")},
		cookie: &http.Cookie{Name: DefaultAccessCookie, Value: "opaque"},
	}
	m := newTestManager(api)

	s, err := m.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, s.ExpiresAt.IsZero())
}

func TestSellerID_UsesRecentVerification(t *testing.T) {
	api := &fakeAPI{verify: []func() (client.Verification, error){ok("seller-1"), ok("seller-1")}}
	m := newTestManager(api)

	id, err := m.SellerID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "seller-1", id)

	id, err = m.SellerID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "seller-1", id)
	assert.Equal(t, 1, api.verifyCalls)

	m.now = func() time.Time { return testNow.Add(2 * time.Minute) }
	_, err = m.SellerID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, api.verifyCalls)
}

func TestSellerID_Invalidate(t *testing.T) {
	api := &fakeAPI{verify: []func() (client.Verification, error){ok("seller-1"), loggedOut()}}
	m := newTestManager(api)

	_, err := m.SellerID(context.Background())
	require.NoError(t, err)

	m.Invalidate()
	id, err := m.SellerID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 2, api.verifyCalls)
}

func TestInspectToken(t *testing.T) {
	exp := testNow.Add(time.Hour)
	claims, err := InspectToken(signToken(t, "seller-9", exp))
	require.NoError(t, err)
	assert.Equal(t, "seller-9", claims.Seller())
	assert.True(t, claims.Expiry().Equal(exp))

	_, err = InspectToken("not.a.jwt")
	assert.Error(t, err)
}

func TestClaims_SellerFallsBackToSubject(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"}}
	assert.Equal(t, "sub-1", c.Seller())
	assert.True(t, c.Expiry().IsZero())
}
