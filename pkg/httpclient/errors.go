package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/sellerdesk/pkg/errors"
)

// DefaultErrorMessage is used when a failed response carries no message.
const DefaultErrorMessage = "Something went wrong!"

// DownstreamErrorResponse covers the two error body shapes the client meets:
// the seller API's flat {"success":false,"message":"..."} body and the
// {"error":{"code":"...","message":"..."}} envelope written by pkg/httputil.
type DownstreamErrorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. Structured bodies keep their message;
// anything else falls back to the status code and raw body.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var downstream DownstreamErrorResponse
	if json.Unmarshal(bodyBytes, &downstream) == nil {
		switch {
		case downstream.Error != nil:
			return mapDownstreamError(resp.StatusCode, downstream.Error.Code, downstream.Error.Message, serviceName)
		case downstream.Success != nil || downstream.Message != "":
			msg := strings.TrimSpace(downstream.Message)
			if msg == "" {
				msg = DefaultErrorMessage
			}
			return mapDownstreamError(resp.StatusCode, "", msg, serviceName)
		}
	}

	if len(bodyBytes) == 0 {
		return mapDownstreamError(resp.StatusCode, "", DefaultErrorMessage, serviceName)
	}
	return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, string(bodyBytes))
}

// mapDownstreamError translates a downstream status code and error code into
// an AppError that preserves the error semantics. The message is kept verbatim
// so it can be shown to the seller.
func mapDownstreamError(status int, code, message, serviceName string) error {
	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: message, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return &apperrors.AppError{Code: "INVALID_INPUT", Message: message, Status: http.StatusBadRequest, Err: apperrors.ErrInvalidInput}
	case status == http.StatusConflict:
		return apperrors.Conflict(message)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(message)
	case status == http.StatusTooManyRequests:
		return apperrors.TooManyRequests(message)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(fmt.Sprintf("%s: %s", serviceName, message))
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", serviceName, status, code, message)
	default:
		if code == "" {
			code = "DOWNSTREAM_ERROR"
		}
		return &apperrors.AppError{
			Code:    code,
			Message: message,
			Status:  status,
		}
	}
}
