package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Abraxas-365/careerqr/pkg/errx"
)

// TokenService issues and validates short-lived signed tokens for
// file downloads, so audio URLs can be shared without the API key.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a TokenService with an HMAC signing secret
func NewTokenService(secret, issuer string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// FileClaims are the claims carried by a download token
type FileClaims struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	jwt.RegisteredClaims
}

// GenerateFileToken signs a token granting access to one stored file
func (s *TokenService) GenerateFileToken(path, contentType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := FileClaims{
		Path:        path,
		ContentType: contentType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errx.Wrap(err, "failed to sign file token", errx.TypeInternal)
	}
	return signed, nil
}

// ValidateFileToken parses and verifies a download token
func (s *TokenService) ValidateFileToken(tokenString string) (*FileClaims, error) {
	claims := &FileClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errx.New("unexpected signing method", errx.TypeAuthorization)
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errx.Wrap(err, "invalid or expired token", errx.TypeAuthorization)
	}
	if !token.Valid {
		return nil, errx.New("invalid token", errx.TypeAuthorization)
	}
	return claims, nil
}
