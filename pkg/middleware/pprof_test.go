package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/sellerdesk/pkg/httputil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func allowlisted(cidrs ...string) http.Handler {
	return IPAllowlist(cidrs, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func serveFrom(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPAllowlist(t *testing.T) {
	tests := []struct {
		name   string
		cidrs  []string
		remote string
		want   int
	}{
		{"loopback v4", []string{"127.0.0.0/8"}, "127.0.0.1:51000", http.StatusNoContent},
		{"outside prefix", []string{"10.0.0.0/8"}, "192.168.1.1:51000", http.StatusForbidden},
		{"second prefix matches", []string{"10.0.0.0/8", "172.16.0.0/12"}, "172.20.3.4:51000", http.StatusNoContent},
		{"ipv4-mapped ipv6 matches v4 prefix", []string{"10.0.0.0/8"}, "[::ffff:10.0.0.1]:51000", http.StatusNoContent},
		{"ipv4-mapped ipv6 outside prefix", []string{"10.0.0.0/8"}, "[::ffff:192.168.0.9]:51000", http.StatusForbidden},
		{"loopback v6", []string{"::1/128"}, "[::1]:51000", http.StatusNoContent},
		{"v4 address against v6 prefix", []string{"::1/128"}, "127.0.0.1:51000", http.StatusForbidden},
		{"host prefix is masked", []string{"10.1.2.3/8"}, "10.200.0.1:51000", http.StatusNoContent},
		{"remote without port", []string{"127.0.0.0/8"}, "127.0.0.1", http.StatusNoContent},
		{"unparseable remote", []string{"0.0.0.0/0"}, "seller-laptop:51000", http.StatusForbidden},
		{"invalid cidr skipped", []string{"not-a-cidr", "127.0.0.0/8"}, "127.0.0.1:51000", http.StatusNoContent},
		{"empty list denies", nil, "127.0.0.1:51000", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveFrom(allowlisted(tt.cidrs...), "/debug/pprof/", tt.remote)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestIPAllowlist_DeniedUsesErrorEnvelope(t *testing.T) {
	rec := serveFrom(allowlisted("10.0.0.0/8"), "/debug/pprof/heap", "203.0.113.7:443")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Nil(t, body.Data)
	require.NotNil(t, body.Error)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
	assert.Equal(t, "access restricted by IP allowlist", body.Error.Message)
}

func TestRegisterPprof_Routes(t *testing.T) {
	r := chi.NewRouter()
	RegisterPprof(r, []string{"127.0.0.0/8"}, discardLogger())

	for _, path := range []string{"/debug/pprof/", "/debug/pprof/cmdline", "/debug/pprof/symbol", "/debug/pprof/heap"} {
		t.Run(path, func(t *testing.T) {
			rec := serveFrom(r, path, "127.0.0.1:51000")
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestRegisterPprof_LeavesOtherRoutesOpen(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	RegisterPprof(r, []string{"10.0.0.0/8"}, discardLogger())

	assert.Equal(t, http.StatusForbidden, serveFrom(r, "/debug/pprof/", "198.51.100.2:80").Code)
	assert.Equal(t, http.StatusOK, serveFrom(r, "/health/live", "198.51.100.2:80").Code)
}
