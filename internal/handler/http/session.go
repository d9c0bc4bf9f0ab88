package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/sellerdesk/internal/client"
	"github.com/utafrali/sellerdesk/internal/service"
	"github.com/utafrali/sellerdesk/internal/session"
	"github.com/utafrali/sellerdesk/pkg/httputil"
	"github.com/utafrali/sellerdesk/pkg/validator"
)

// SessionHandler reports and establishes the seller session.
type SessionHandler struct {
	service *service.Dashboard
	logger  *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(svc *service.Dashboard, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		service: svc,
		logger:  logger,
	}
}

// RegisterResponse is returned after a seller account is created.
type RegisterResponse struct {
	Message string        `json:"message"`
	Session session.State `json:"session"`
}

// GetSession handles GET /api/v1/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Session(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: st})
}

// Register handles POST /api/v1/session/register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req client.Profile
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	st, msg, err := h.service.Register(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: RegisterResponse{Message: msg, Session: st}})
}
