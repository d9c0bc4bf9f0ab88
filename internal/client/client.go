package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
	"github.com/utafrali/sellerdesk/pkg/httpclient"
)

// ServiceName labels seller API errors and breaker metrics.
const ServiceName = "seller-api"

// Seller API paths.
const (
	pathListProducts = "/seller/product/get-products"
	pathAddProduct   = "/seller/product/add-product"
	pathRegister     = "/seller/auth/register"
	pathVerifyUser   = "/seller/auth/verify-user"
	pathRefreshToken = "/seller/auth/refresh-token"
)

// Doer executes HTTP requests and owns the cookie jar that carries the seller
// session. Both httpclient.Client and httpclient.CircuitBreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
	Jar() http.CookieJar
}

// CircuitOpenFallback turns an open breaker into a 503 the dashboard can show.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.Unavailable("seller API is temporarily unavailable, please retry shortly")
}

// Client talks to the seller backend. Credentials travel as cookies in the
// Doer's jar, so one Client represents one seller session.
type Client struct {
	baseURL *url.URL
	http    Doer
	logger  *slog.Logger
}

// New creates a seller API client for baseURL.
func New(baseURL string, doer Doer, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse seller api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, apperrors.InvalidInput(fmt.Sprintf("seller api url %q must be absolute", baseURL))
	}
	return &Client{baseURL: u, http: doer, logger: logger}, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookie returns the named session cookie held for the backend, if any.
func (c *Client) Cookie(name string) (*http.Cookie, bool) {
	jar := c.http.Jar()
	if jar == nil {
		return nil, false
	}
	for _, ck := range jar.Cookies(c.baseURL) {
		if ck.Name == name {
			return ck, true
		}
	}
	return nil, false
}

// SetCookie stores a session cookie for the backend, as if the backend had
// set it. It is a no-op without a jar.
func (c *Client) SetCookie(ck *http.Cookie) {
	if jar := c.http.Jar(); jar != nil {
		jar.SetCookies(c.baseURL, []*http.Cookie{ck})
	}
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

// envelope is the body every seller API endpoint answers with.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte, contentType string) (*http.Request, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), r)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// do sends req and returns the response only when it is 2xx. Every other
// outcome is translated into an error carrying the backend's message.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		var serverErr *httpclient.ServerError
		switch {
		case errors.As(err, &serverErr):
			return nil, httpclient.ParseResponseError(&http.Response{
				StatusCode: serverErr.StatusCode,
				Body:       io.NopCloser(bytes.NewReader(serverErr.Body)),
			}, ServiceName)
		case errors.Is(err, httpclient.ErrCircuitOpen):
			c.logger.WarnContext(ctx, "seller api circuit open", slog.String("path", req.URL.Path))
			return nil, apperrors.Unavailable("seller API is temporarily unavailable, please retry shortly")
		default:
			return nil, fmt.Errorf("call %s %s: %w", ServiceName, req.URL.Path, err)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, ServiceName)
	}
	return resp, nil
}

// decode reads a 2xx body into v and closes it.
func decode(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", ServiceName, err)
	}
	return nil
}

// rejected reports a 2xx answer whose body says success:false.
func rejected(message string) error {
	if strings.TrimSpace(message) == "" {
		message = httpclient.DefaultErrorMessage
	}
	return &apperrors.AppError{
		Code:    "DOWNSTREAM_REJECTED",
		Message: message,
		Status:  http.StatusBadGateway,
	}
}
