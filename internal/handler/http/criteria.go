package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/sellerdesk/internal/domain"
	"github.com/utafrali/sellerdesk/internal/service"
	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
	"github.com/utafrali/sellerdesk/pkg/httputil"
)

// CriteriaHandler exposes the stored search, filter and sort criteria.
type CriteriaHandler struct {
	service *service.Dashboard
	logger  *slog.Logger
}

// NewCriteriaHandler creates a new criteria HTTP handler.
func NewCriteriaHandler(svc *service.Dashboard, logger *slog.Logger) *CriteriaHandler {
	return &CriteriaHandler{
		service: svc,
		logger:  logger,
	}
}

// SetCriterionRequest is the JSON body for updating one criterion.
type SetCriterionRequest struct {
	Value string `json:"value"`
}

// GetCriteria handles GET /api/v1/criteria
func (h *CriteriaHandler) GetCriteria(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.Criteria()})
}

// SetCriterion handles PUT /api/v1/criteria/{field}
//
// field is one of search, category, status or sort.
func (h *CriteriaHandler) SetCriterion(w http.ResponseWriter, r *http.Request) {
	var req SetCriterionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var (
		k   domain.FilterCriteria
		err error
	)
	switch field := chi.URLParam(r, "field"); field {
	case "search":
		k = h.service.SetSearchTerm(req.Value)
	case "category":
		k = h.service.SetCategory(req.Value)
	case "status":
		k, err = h.service.SetStatus(domain.StatusFilter(req.Value))
	case "sort":
		k, err = h.service.SetSort(domain.SortKey(req.Value))
	default:
		err = apperrors.NotFound("criterion", field)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: k})
}

// ClearFilters handles DELETE /api/v1/criteria
func (h *CriteriaHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.ClearFilters()})
}
