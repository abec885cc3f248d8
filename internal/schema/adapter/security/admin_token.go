package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
)

// AdminTokenService issues and verifies the HS256 tokens that guard the
// admin schema endpoints
type AdminTokenService struct {
	secretKey []byte
	issuer    string
}

// NewAdminTokenService creates a token service; secret must not be empty
func NewAdminTokenService(secret, issuer string) (*AdminTokenService, error) {
	if secret == "" {
		return nil, errors.New("admin jwt secret cannot be empty")
	}
	if issuer == "" {
		return nil, errors.New("admin jwt issuer cannot be empty")
	}
	return &AdminTokenService{secretKey: []byte(secret), issuer: issuer}, nil
}

// Issue signs a token for subject valid for ttl
func (s *AdminTokenService) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

// Validate checks signature, issuer and expiry and returns the subject
func (s *AdminTokenService) Validate(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrTokenInvalid
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
