package authz

import (
	"fmt"
	"time"

	"betadmin/internal/apierror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the typ claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims is the single identity shape carried by every token.
type Claims struct {
	ID          string   `json:"id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Type        string   `json:"typ"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the caller identity used by the rules.
func (c *Claims) Principal() (Principal, error) {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: token mal formado", apierror.ErrUnauthenticated)
	}
	return Principal{ID: id, Role: c.Role, Permissions: c.Permissions}, nil
}

// NewClaims builds claims for p valid for ttl, with a fresh jti.
func NewClaims(p Principal, tokenType string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		ID:          p.ID.String(),
		Role:        p.Role,
		Permissions: p.Permissions,
		Type:        tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// SignToken signs claims with HS256.
func SignToken(secret string, claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies signature and expiry and checks the token type.
func ParseToken(secret, tokenStr, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: token invalido o expirado", apierror.ErrUnauthenticated)
	}
	if claims.Type != tokenType {
		return nil, fmt.Errorf("%w: tipo de token invalido", apierror.ErrUnauthenticated)
	}
	if claims.RegisteredClaims.ID == "" {
		return nil, fmt.Errorf("%w: token sin identificador", apierror.ErrUnauthenticated)
	}
	return claims, nil
}
