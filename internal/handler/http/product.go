package http

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/sellerdesk/internal/client"
	"github.com/utafrali/sellerdesk/internal/service"
	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
	"github.com/utafrali/sellerdesk/pkg/httputil"
	"github.com/utafrali/sellerdesk/pkg/logger"
	"github.com/utafrali/sellerdesk/pkg/validator"
)

const (
	// maxImageBytes caps a single uploaded photo.
	maxImageBytes = 5 << 20
	// maxUploadBytes caps the whole multipart request.
	maxUploadBytes = 10*maxImageBytes + 1<<20
)

// ProductHandler creates new listings.
type ProductHandler struct {
	service *service.Dashboard
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.Dashboard, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// AddProduct handles POST /api/v1/products (multipart/form-data).
//
// Text fields use the backend names (productName, brand, price,
// stockQuantity, category, description); photos are sent as "image" parts.
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to parse multipart form: " + err.Error()},
		})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in, err := productInput(r.MultipartForm)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(in); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	msg, err := h.service.AddProduct(r.Context(), logger.SellerIDFromContext(r.Context()), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]string{"message": msg}})
}

func productInput(form *multipart.Form) (client.AddProductInput, error) {
	value := func(name string) string {
		if vs := form.Value[name]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	in := client.AddProductInput{
		ProductName: value("productName"),
		Brand:       value("brand"),
		Category:    value("category"),
		Description: value("description"),
	}

	if raw := value("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return in, apperrors.InvalidInput(fmt.Sprintf("invalid price %q", raw))
		}
		in.Price = price
	}
	if raw := value("stockQuantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return in, apperrors.InvalidInput(fmt.Sprintf("invalid stockQuantity %q", raw))
		}
		in.StockQuantity = qty
	}

	for _, fh := range form.File["image"] {
		img, err := readImage(fh)
		if err != nil {
			return in, err
		}
		in.Images = append(in.Images, img)
	}
	return in, nil
}

func readImage(fh *multipart.FileHeader) (client.Image, error) {
	if fh.Size > maxImageBytes {
		return client.Image{}, apperrors.InvalidInput(fmt.Sprintf("image %q exceeds %d bytes", fh.Filename, maxImageBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return client.Image{}, fmt.Errorf("open image %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return client.Image{}, fmt.Errorf("read image %q: %w", fh.Filename, err)
	}
	return client.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
