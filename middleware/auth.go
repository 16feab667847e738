package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authpkg "github.com/m-atef1999/Spotless-sub000/auth"
)

const principalKey = "principal"

// RequireAuth validates the Bearer JWT and places the resolved Principal
// into the gin context for handlers to hand into services.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		tokenString := authHeader[7:]

		claims, err := authpkg.ParseAndValidate(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		principal, err := authpkg.PrincipalFromClaims(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRoles ensures the authenticated principal has one of the allowed roles.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	roleSet := map[string]struct{}{}
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if _, ok := roleSet[p.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated Principal or nil.
func PrincipalFrom(c *gin.Context) *authpkg.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*authpkg.Principal)
	return p
}
