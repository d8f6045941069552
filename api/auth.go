/*
auth.go - Token issuing, verification, and the authentication middleware.

Tokens are HS256 JWTs carrying the caller's account id, role, campus, and
department. The middleware verifies the bearer token and stashes a
directory.Identity in the request context; handlers and the workflow trust
that identity as-is. Passwords are stored as bcrypt hashes.
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/leave-engine/directory"
)

// Claims is the JWT payload for an authenticated account.
type Claims struct {
	AccountID  string `json:"uid"`
	Role       string `json:"role"`
	Campus     string `json:"campus"`
	Department string `json:"dept"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateToken signs a token for the account's identity.
func GenerateToken(secret string, acct *directory.Account, ttl time.Duration) (string, error) {
	claims := Claims{
		AccountID:  acct.ID,
		Role:       string(acct.Role),
		Campus:     acct.Campus.Normalize(),
		Department: acct.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   acct.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies a token string and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom returns the verified caller identity placed in the context by
// the auth middleware.
func IdentityFrom(ctx context.Context) (directory.Identity, bool) {
	id, ok := ctx.Value(identityKey).(directory.Identity)
	return id, ok
}

// WithIdentity returns a context carrying the identity. Exposed for tests.
func WithIdentity(ctx context.Context, id directory.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// RequireAuth verifies the Authorization bearer token and injects the
// caller's identity into the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		claims, err := ParseToken(h.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		role, ok := directory.ParseRole(claims.Role)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token role", nil)
			return
		}

		identity := directory.Identity{
			AccountID:  claims.AccountID,
			Role:       role,
			Campus:     claims.Campus,
			Department: claims.Department,
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}
