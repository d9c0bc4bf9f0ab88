package client

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/sellerdesk/internal/domain"
	"github.com/utafrali/sellerdesk/pkg/validator"
)

// productDTO is a listing as the seller API encodes it.
type productDTO struct {
	ID            string          `json:"_id"`
	ProductName   string          `json:"productName"`
	Brand         *string         `json:"brand"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Description   *string         `json:"description"`
	Images        []string        `json:"images"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (d productDTO) toDomain() domain.Product {
	photos := d.Images
	if photos == nil {
		photos = []string{}
	}
	return domain.Product{
		ID:            d.ID,
		Name:          d.ProductName,
		Brand:         nonEmpty(d.Brand),
		Category:      d.Category,
		Price:         d.Price,
		StockQuantity: d.StockQuantity,
		Description:   nonEmpty(d.Description),
		Photos:        photos,
		IsActive:      d.IsActive,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// nonEmpty treats an empty string the same as an absent field.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

type listProductsResponse struct {
	envelope
	Products []productDTO `json:"products"`
}

// ListProducts fetches every listing of the logged-in seller, in backend order.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathListProducts, nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var body listProductsResponse
	if err := decode(resp, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, rejected(body.Message)
	}

	products := make([]domain.Product, len(body.Products))
	for i, d := range body.Products {
		products[i] = d.toDomain()
	}
	c.logger.DebugContext(ctx, "products fetched", slog.Int("count", len(products)))
	return products, nil
}

// Image is one photo attached to a new listing.
type Image struct {
	Filename    string `json:"filename" validate:"required,notblank"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-" validate:"required,min=1"`
}

// AddProductInput is a new listing. Brand and Description may be empty.
type AddProductInput struct {
	ProductName   string          `json:"productName" validate:"required,notblank,max=200"`
	Brand         string          `json:"brand" validate:"max=100"`
	Price         decimal.Decimal `json:"price" validate:"dpositive"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	Category      string          `json:"category" validate:"required,notblank,max=100"`
	Description   string          `json:"description" validate:"max=5000"`
	Images        []Image         `json:"images" validate:"max=10,dive"`
}

// AddProduct validates in and uploads it as a multipart form. It returns the
// backend's confirmation message.
func (c *Client) AddProduct(ctx context.Context, in AddProductInput) (string, error) {
	if err := validator.Validate(in); err != nil {
		return "", err
	}

	body, contentType, err := encodeProductForm(in)
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, pathAddProduct, body, contentType)
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}

	var env envelope
	if err := decode(resp, &env); err != nil {
		return "", err
	}
	if !env.Success {
		return "", rejected(env.Message)
	}
	c.logger.InfoContext(ctx, "product added",
		slog.String("product_name", in.ProductName),
		slog.Int("images", len(in.Images)),
	)
	return env.Message, nil
}

func encodeProductForm(in AddProductInput) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"productName", in.ProductName},
		{"brand", in.Brand},
		{"price", in.Price.String()},
		{"stockQuantity", strconv.Itoa(in.StockQuantity)},
		{"category", in.Category},
		{"description", in.Description},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	for _, img := range in.Images {
		ct := img.ContentType
		if ct == "" {
			ct = http.DetectContentType(img.Data)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, img.Filename))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("write image %s: %w", img.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
