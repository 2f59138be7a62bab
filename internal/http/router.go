package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	tokenSvc *service.TokenService,
	userSvc *service.UserService,
	userH *UserHandler,
	taskH *TaskHandler,
	publicDir string,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging y recovery.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	if publicDir != "" {
		r.Static("/static", publicDir)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := AuthMiddleware(tokenSvc, userSvc)

	users := r.Group("/users")
	users.POST("", userH.Register)
	users.POST("/login", userH.Login)
	users.POST("/logout", auth, userH.Logout)
	users.POST("/logoutAll", auth, userH.LogoutAll)
	users.GET("/me", auth, userH.Me)
	users.PATCH("/me", auth, userH.UpdateMe)
	users.DELETE("/me", auth, userH.DeleteMe)
	users.POST("/me/avatar", auth, userH.UploadAvatar)
	users.DELETE("/me/avatar", auth, userH.DeleteAvatar)

	// Fuera de /users porque gin no admite ":id" junto a segmentos estaticos.
	r.GET("/avatars/:id", userH.ServeAvatar)

	tasks := r.Group("/tasks", auth)
	tasks.POST("", taskH.CreateTask)
	tasks.GET("", taskH.ListTasks)
	tasks.GET("/:id", taskH.GetTask)
	tasks.PATCH("/:id", taskH.UpdateTask)
	tasks.DELETE("/:id", taskH.DeleteTask)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
