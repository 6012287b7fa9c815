package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/app"
	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
)

const userKey = "user"

// AuthMiddleware resolves the session token (cookie or bearer header)
// into a user and stores it on the context. Every room command requires
// an identity, so the group behind this middleware is the whole API.
func AuthMiddleware(auth *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
