package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/utafrali/sellerdesk/pkg/validator"
)

// Profile is the identity a seller registers with after signing in with Google.
type Profile struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required,notblank,max=200"`
	Picture string `json:"picture" validate:"omitempty,url"`
}

// Register creates the seller account for p. The backend sets the session
// cookies on success.
func (c *Client) Register(ctx context.Context, p Profile) (string, error) {
	if err := validator.Validate(p); err != nil {
		return "", err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal register request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, pathRegister, body, "application/json")
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
	return env.Message, nil
}

// Verification is the answer of the verify-user endpoint.
type Verification struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// VerifyUser asks the backend who the session cookies belong to. An expired
// access token yields an error wrapping apperrors.ErrUnauthorized. A 2xx
// answer with success:false is returned as is, without error.
func (c *Client) VerifyUser(ctx context.Context) (Verification, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathVerifyUser, nil, "")
	if err != nil {
		return Verification{}, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return Verification{}, err
	}
	var v Verification
	if err := decode(resp, &v); err != nil {
		return Verification{}, err
	}
	return v, nil
}

// RefreshToken exchanges the refresh cookie for a new access cookie.
func (c *Client) RefreshToken(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, pathRefreshToken, nil, "")
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
