// Package auth resolves the authenticated principal of a request.
//
// Two modes are supported:
//   - bearer: an HS256 JWT in the Authorization header, user id in the "sub" claim;
//   - gateway: no secret configured, the x-user-id header forwarded by the gateway is trusted.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserIDHeader is the header forwarded by the gateway and sent to the AI API.
const UserIDHeader = "X-User-ID"

// ErrUnauthenticated is returned when no usable principal is present.
var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the caller on whose behalf an operation runs.
type Principal struct {
	UserID string
	Token  string // raw bearer credential, empty in gateway mode
}

type ctxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored by Middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok && p.UserID != ""
}

// Authenticator verifies requests.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns an Authenticator. An empty secret selects gateway mode.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Authenticate resolves the principal of r.
func (a *Authenticator) Authenticate(r *http.Request) (Principal, error) {
	return a.Resolve(r.Header.Get(UserIDHeader), r.Header.Get("Authorization"))
}

// Resolve resolves a principal from a forwarded user id and an Authorization
// value, whichever the mode uses. Transports other than HTTP call it directly.
func (a *Authenticator) Resolve(userIDHeader, authorization string) (Principal, error) {
	if len(a.secret) == 0 {
		userID := strings.TrimSpace(userIDHeader)
		if userID == "" {
			return Principal{}, fmt.Errorf("%w: missing %s header", ErrUnauthenticated, UserIDHeader)
		}
		return Principal{UserID: userID}, nil
	}

	raw, ok := bearerToken(authorization)
	if !ok {
		return Principal{}, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	userID, err := a.ValidateToken(raw)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: userID, Token: raw}, nil
}

// ValidateToken checks an HS256 token and returns its subject.
func (a *Authenticator) ValidateToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return sub, nil
}

// IssueToken signs a token for userID valid for ttl. Used by local tooling
// and tests; production tokens come from the identity provider.
func IssueToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Middleware rejects unauthenticated requests with 401 and stores the
// principal in the request context otherwise.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.Authenticate(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
