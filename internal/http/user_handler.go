package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/service"
)

// UserHandler mantiene dependencias para endpoints de cuentas.
type UserHandler struct {
	logger       *zap.Logger
	userServ     *service.UserService
	tokenServ    *service.TokenService
	cookieSecure bool
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, tokenServ *service.TokenService, cookieSecure bool) *UserHandler {
	return &UserHandler{
		logger:       logger,
		userServ:     userServ,
		tokenServ:    tokenServ,
		cookieSecure: cookieSecure,
	}
}

// Register maneja POST /users.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Age      int    `json:"age"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidName),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrInvalidAge),
			errors.Is(err, service.ErrWeakPassword),
			errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}
	}

	if !h.startSession(c, user) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login maneja POST /users/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
			return
		}
	}

	if !h.startSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout maneja POST /users/logout y revoca solo la sesion actual.
func (h *UserHandler) Logout(c *gin.Context) {
	user, ok := CurrentUser(c)
	token, okToken := CurrentToken(c)
	if !ok || !okToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	if err := h.userServ.Logout(c.Request.Context(), user.ID, token); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not logout"})
		return
	}
	h.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// LogoutAll maneja POST /users/logoutAll y revoca todas las sesiones.
func (h *UserHandler) LogoutAll(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	if err := h.userServ.LogoutAll(c.Request.Context(), user.ID); err != nil {
		h.logger.Error("logout all failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not logout"})
		return
	}
	h.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// Me maneja GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe maneja PATCH /users/me con la allow-list de campos.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		h.logger.Warn("invalid update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := h.userServ.Update(c.Request.Context(), user, updates)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUpdate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update(s)"})
			return
		case errors.Is(err, service.ErrInvalidName),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrInvalidAge),
			errors.Is(err, service.ErrWeakPassword),
			errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("update user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": updated})
}

// DeleteMe maneja DELETE /users/me.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	if err := h.userServ.Delete(c.Request.Context(), user); err != nil {
		h.logger.Error("delete user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UploadAvatar maneja POST /users/me/avatar (multipart, campo "avatar").
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read avatar"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read avatar"})
		return
	}

	if err := h.userServ.SetAvatar(c.Request.Context(), user.ID, fileHeader.Filename, data); err != nil {
		switch {
		case errors.Is(err, service.ErrAvatarExtension),
			errors.Is(err, service.ErrAvatarTooLarge),
			errors.Is(err, service.ErrAvatarDecode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("upload avatar failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store avatar"})
			return
		}
	}
	c.Status(http.StatusOK)
}

// DeleteAvatar maneja DELETE /users/me/avatar.
func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	if err := h.userServ.DeleteAvatar(c.Request.Context(), user); err != nil {
		if errors.Is(err, service.ErrNoAvatar) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no avatar to delete"})
			return
		}
		h.logger.Error("delete avatar failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete avatar"})
		return
	}
	c.Status(http.StatusOK)
}

// ServeAvatar maneja GET /users/:id/avatar. Es publico y siempre sirve PNG.
func (h *UserHandler) ServeAvatar(c *gin.Context) {
	avatar, err := h.userServ.GetAvatar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrNoAvatar) {
			c.Status(http.StatusNotFound)
			return
		}
		h.logger.Error("serve avatar failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "image/png", avatar)
}

// startSession emite el token, lo persiste en la lista del usuario y setea
// la cookie de sesion. Devuelve false si ya respondio con error.
func (h *UserHandler) startSession(c *gin.Context, user domain.User) bool {
	token, err := h.tokenServ.Issue(user.ID)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return false
	}
	if err := h.userServ.PersistToken(c.Request.Context(), user.ID, token); err != nil {
		h.logger.Error("token persist failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return false
	}

	// Cookie de sesion sin expiry, HttpOnly y SameSite=Lax; Secure por config.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, token, 0, "/", "", h.cookieSecure, true)
	return true
}

func (h *UserHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, "", -1, "/", "", h.cookieSecure, true)
}
