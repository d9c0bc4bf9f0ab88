package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims the dashboard reads. The backend signs
// the token; the client cannot verify it and only inspects it.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Seller returns the seller ID carried by the token, falling back to sub.
func (c *Claims) Seller() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// Expiry returns the exp claim, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// InspectToken decodes the claims of an access token without checking its
// signature. The backend remains the authority on validity.
func InspectToken(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("inspect access token: %w", err)
	}
	return claims, nil
}
