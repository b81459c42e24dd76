package identity

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const tokenKey contextKey = "identity.token"

// WithToken attaches a raw bearer token to the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext extracts a previously attached bearer token.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// Claims are the JWT claims expected on shopper tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenProvider resolves identity from an HS256 bearer token carried in
// the context. Missing or invalid tokens resolve to anonymous rather
// than an error; the gate turns anonymity into its user-facing warning.
type TokenProvider struct {
	secret []byte
}

// NewTokenProvider creates a provider validating with the given secret.
func NewTokenProvider(secret []byte) *TokenProvider {
	return &TokenProvider{secret: secret}
}

// CurrentUser validates the context token and extracts the email claim.
func (p *TokenProvider) CurrentUser(ctx context.Context) (*User, error) {
	tokenStr, ok := TokenFromContext(ctx)
	if !ok {
		return nil, nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid || claims.Email == "" {
		return nil, nil
	}
	return &User{Email: claims.Email}, nil
}

var _ Provider = (*TokenProvider)(nil)
