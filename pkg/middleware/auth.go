package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/novy-stil/service-atelier/pkg/auth"
	"github.com/novy-stil/service-atelier/pkg/response"
)

const principalKey = "auth.principal"

// AuthMiddleware requires a valid bearer token. When resolver is not nil the
// token's user is re-loaded so deactivated accounts lose access immediately.
func AuthMiddleware(jwtManager *auth.JWTManager, resolver auth.PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		claims, err := jwtManager.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			response.Unauthorized(c, "invalid token subject")
			return
		}

		principal := &auth.Principal{UserID: userID, Email: claims.Email, Superuser: claims.Superuser}
		if resolver != nil {
			principal, err = resolver.ResolvePrincipal(c.Request.Context(), userID)
			if err != nil {
				response.Unauthorized(c, "user is inactive or does not exist")
				return
			}
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin allows only superusers. It must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok || !p.Superuser {
			response.Forbidden(c, "administrator access required")
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller.
func GetPrincipal(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok && p != nil
}

// GetUserID returns the authenticated caller's id.
func GetUserID(c *gin.Context) (int64, bool) {
	p, ok := GetPrincipal(c)
	if !ok {
		return 0, false
	}
	return p.UserID, true
}
