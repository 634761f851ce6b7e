package client

import (
	"fmt"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// accessClaims are the parts of the backend access token the client reads.
// The signature is not checked here; the backend verifies it on every request.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func parseClaims(token string) (*accessClaims, error) {
	var c accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return &c, nil
}

func (c *accessClaims) user() (*models.User, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject %q", common.ErrInvalidToken, c.Subject)
	}
	return &models.User{ID: id, Email: c.Email}, nil
}

func (c *accessClaims) expiresAt() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}
