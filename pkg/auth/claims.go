package auth

import (
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims is the payload carried inside a bearer credential.
// Downstream code treats the credential string as opaque; only this package
// knows its structure.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
