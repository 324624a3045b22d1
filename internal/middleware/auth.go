package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/commwatch/commwatch/internal/domain"
	"github.com/commwatch/commwatch/internal/jwt"
	"github.com/commwatch/commwatch/internal/utils"
)

// Key to store the claims in the request context
type key int

const ClaimsKey key = 0

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService jwt.JwtService
}

func NewAuth(jwtService jwt.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth returns middleware that requires any valid administrator token
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.auth(false)
}

// SuperadminOnly returns middleware that additionally requires the superadmin role
func (a *Auth) SuperadminOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

// extractClaims validates the token from the request and returns its claims
func (a *Auth) extractClaims(r *http.Request) (*domain.Claims, error) {
	// Cookie first (browser clients), then Authorization header
	var tokenString string
	accessCookie, err := r.Cookie("accessToken")
	if err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	return a.jwtService.DecodeToken(tokenString)
}

var errNoToken = errorString("no token")

type errorString string

func (e errorString) Error() string { return string(e) }

func (a *Auth) auth(superadminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.extractClaims(r)
			if err != nil {
				if err == errNoToken {
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
					return
				}
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			if superadminOnly && !claims.IsSuperadmin() {
				http.Error(w, "Requires Super Admin privileges", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext retrieves the validated claims from the request context
func GetClaimsFromContext(r *http.Request) *domain.Claims {
	claims, ok := r.Context().Value(ClaimsKey).(*domain.Claims)
	if !ok {
		return nil
	}
	return claims
}
