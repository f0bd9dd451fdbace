package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

var ErrNoSubject = errors.New("no subject in token")

// Claims is what the API needs from a managed provider access token.
type Claims struct {
	Subject string
	Email   string
}

// JWKSVerifier validates Cognito access tokens against the user pool's
// published key set, cached and refreshed in the background.
type JWKSVerifier struct {
	cache  *jwk.Cache
	url    string
	issuer string
}

func NewJWKSVerifier(ctx context.Context, issuerURL string) (*JWKSVerifier, error) {
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", issuerURL)

	err = cache.Register(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to register jwks url with cache: %w", err)
	}

	return &JWKSVerifier{cache: cache, url: jwksURL, issuer: issuerURL}, nil
}

func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	set, err := v.cache.Lookup(ctx, v.url)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parse jwt: %w", err)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, ErrNoSubject
	}

	claims := &Claims{Subject: subject}
	// Cognito access tokens carry no email; id tokens do.
	_ = token.Get("email", &claims.Email)

	return claims, nil
}
