package webserver

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Auth struct {
	jwtSecret []byte
	adminKey  string
	log       *zap.SugaredLogger
}

func NewAuth(secret []byte, adminKey string, log *zap.SugaredLogger) Auth {
	return Auth{jwtSecret: secret, adminKey: adminKey, log: log}
}

func (a Auth) Login(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Key), []byte(a.adminKey)) != 1 {
		a.log.Infow("rejected login", "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"err": "bad key"})
		return
	}

	token, err := issueJWT(a.jwtSecret)
	if err != nil {
		a.log.Errorw("issue jwt", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func issueJWT(secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	return token.SignedString(secret)
}

func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		tok, err := jwt.Parse(h[7:], func(t *jwt.Token) (interface{}, error) { return secret, nil })
		if err != nil || !tok.Valid {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
