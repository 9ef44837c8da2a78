package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JpegDev/poll-discord/src/statusapi/config"
)

func New(cfg config.Config, store Store, ledger Ledger, log *zap.SugaredLogger) *gin.Engine {
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery(), requestID())
	attachRoutes(g, cfg, store, ledger, log)
	return g
}

func attachRoutes(r *gin.Engine, cfg config.Config, store Store, ledger Ledger, log *zap.SugaredLogger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth([]byte(cfg.JWTSecret), cfg.AdminKey, log)
	pollH := NewPolls(store, ledger, log)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/login", authH.Login)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.GET("/polls", pollH.List)
		secured.GET("/polls/:id", pollH.Get)
		secured.DELETE("/polls/:id", pollH.Delete)
	}
}

// requestID tags every response so API errors can be matched to log lines.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("reqID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
