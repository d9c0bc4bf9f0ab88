package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/utafrali/sellerdesk/internal/domain"
	"github.com/utafrali/sellerdesk/internal/service"
	"github.com/utafrali/sellerdesk/pkg/httputil"
	"github.com/utafrali/sellerdesk/pkg/logger"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// CatalogHandler serves the seller's catalog screen and ad-hoc queries.
type CatalogHandler struct {
	service *service.Dashboard
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.Dashboard, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// GetView handles GET /api/v1/catalog/view
func (h *CatalogHandler) GetView(w http.ResponseWriter, r *http.Request) {
	screen, err := h.service.Screen(r.Context(), logger.SellerIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: screen})
}

// Refetch handles POST /api/v1/catalog/refetch
func (h *CatalogHandler) Refetch(w http.ResponseWriter, r *http.Request) {
	screen, err := h.service.Refetch(r.Context(), logger.SellerIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: screen})
}

// Query handles GET /api/v1/catalog/query?search=&category=&status=&sort=
//
// The stored criteria are left alone.
func (h *CatalogHandler) Query(w http.ResponseWriter, r *http.Request) {
	var k domain.FilterCriteria
	if err := queryDecoder.Decode(&k, r.URL.Query()); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.Query(r.Context(), logger.SellerIDFromContext(r.Context()), k)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// GetFacets handles GET /api/v1/catalog/facets
func (h *CatalogHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.service.Facets(r.Context(), logger.SellerIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: facets})
}

// GetStockStatus handles GET /api/v1/stock-status?quantity=n
func (h *CatalogHandler) GetStockStatus(w http.ResponseWriter, r *http.Request) {
	q, ok := httputil.ParseIntQuery(w, r, "quantity")
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.StockStatus(q)})
}
