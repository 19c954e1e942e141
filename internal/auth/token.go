package auth

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/stayops/hotel-request-service/internal/domain"
)

// TokenVerifier validates identity tokens issued by the external auth
// provider. The engine never mints tokens; it shares the HS256 secret with
// the issuer and only reads the identity out.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier builds a verifier over the shared secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Claims describes the identity payload the auth provider issues.
type Claims struct {
	SubjectID string             `json:"sub"`
	Subject   domain.SubjectType `json:"subject"`
	HotelID   string             `json:"hotel_id"`
	jwt.RegisteredClaims
}

// ParseToken validates and returns claims.
func (tv *TokenVerifier) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tv.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
