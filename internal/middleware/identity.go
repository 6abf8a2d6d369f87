package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kurodate/qa-board/backend/internal/auth"
)

// IdentityHeader is set by the fronting proxy for signed-in users.
const IdentityHeader = "X-Ms-Client-Principal-Name"

// identityCookie mirrors the header for client-side reads.
const identityCookie = "user_email"

const contextIdentityKey = "identifier"

// Identity extracts the caller's identifier from the proxy header, the
// identity cookie, or a guest token, in that order, and stashes it in
// the request context. Requests without any identity pass through;
// handlers that need one reject later.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identifier := identityFrom(c); identifier != "" {
			c.Set(contextIdentityKey, identifier)
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(IdentityHeader)); v != "" {
		return v
	}

	if v, err := c.Cookie(identityCookie); err == nil {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		if identifier, err := auth.ParseToken(strings.TrimSpace(token)); err == nil {
			return identifier
		}
	}

	return ""
}

// CurrentIdentifier returns the identifier the Identity middleware
// resolved for this request, if any.
func CurrentIdentifier(c *gin.Context) (string, bool) {
	raw, exists := c.Get(contextIdentityKey)
	if !exists {
		return "", false
	}
	identifier, ok := raw.(string)
	if !ok || identifier == "" {
		return "", false
	}
	return identifier, true
}
