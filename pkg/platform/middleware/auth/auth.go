// Package auth validates bearer tokens issued by the hospital identity
// provider and attaches the resulting caller to the request context.
//
// The identity provider itself is an external collaborator; this package
// only verifies signatures and interprets claims.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"lifebridge/pkg/domain"
	dErrors "lifebridge/pkg/domain-errors"
	"lifebridge/pkg/platform/httputil"
	"lifebridge/pkg/requestcontext"
)

// Claims are the JWT claims we expect from the identity provider.
type Claims struct {
	Role  string `json:"role"`
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens against the deployment signing key.
type Verifier struct {
	signingKey []byte
}

// NewVerifier constructs a token verifier for an HMAC signing key.
func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey)}
}

// Verify parses and validates a token string, returning the caller identity.
func (v *Verifier) Verify(tokenString string) (domain.Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.signingKey, nil
	})
	if err != nil || !token.Valid {
		return domain.Caller{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid bearer token")
	}
	if claims.Subject == "" {
		return domain.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "token missing subject")
	}

	return domain.Caller{
		Subject: claims.Subject,
		Role:    domain.Role(claims.Role),
		Scopes:  strings.Fields(claims.Scope),
	}, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified caller in the request context for downstream handlers.
func RequireAuth(verifier *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			caller, err := verifier.Verify(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				if logger != nil {
					logger.WarnContext(r.Context(), "token rejected",
						"path", r.URL.Path,
						"error", err,
					)
				}
				httputil.WriteError(w, err)
				return
			}

			ctx := requestcontext.WithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
