package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"task-manager/internal/domain"
	"task-manager/internal/service"
)

const (
	// AuthCookieName es la cookie de sesion que setean register y login.
	AuthCookieName = "auth_token"

	currentUserKey  = "current_user"
	currentTokenKey = "current_token"
)

// AuthMiddleware valida el session token y guarda usuario y token crudo en
// el contexto del request. La firma la chequea TokenService; que el token
// siga activo lo decide la lista almacenada del usuario, en ese orden.
func AuthMiddleware(tokenSvc *service.TokenService, userSvc *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenSvc == nil || userSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
			c.Abort()
			return
		}

		token := extractToken(c)
		if token == "" {
			rejectAuth(c)
			return
		}

		userID, err := tokenSvc.Verify(token)
		if err != nil {
			rejectAuth(c)
			return
		}

		user, err := userSvc.GetByID(c.Request.Context(), userID)
		if err != nil {
			rejectAuth(c)
			return
		}

		if !user.HasToken(token) {
			rejectAuth(c)
			return
		}

		c.Set(currentUserKey, user)
		c.Set(currentTokenKey, token)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

func rejectAuth(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
	c.Abort()
}

// CurrentUser obtiene el usuario autenticado desde el contexto.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

// CurrentToken obtiene el token crudo de la sesion actual.
func CurrentToken(c *gin.Context) (string, bool) {
	val, ok := c.Get(currentTokenKey)
	if !ok {
		return "", false
	}
	token, ok := val.(string)
	return token, ok
}
