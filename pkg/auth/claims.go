package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/arcacommerce/arca-backend/pkg/enums"
)

// AccessTokenPayload is the identity minted into a token.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims is the JWT body verified on every request.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the verified caller handed to services.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (c AccessTokenClaims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role}
}

// IsBackOffice reports whether the actor holds staff or admin capability.
func (a Actor) IsBackOffice() bool {
	return a.Role.IsBackOffice()
}

// CanAccess reports whether the actor may read or act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.UserID == ownerID || a.IsBackOffice()
}
