package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/railbooking/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader  = "X-Request-ID"
	customerIDHeader = "X-Customer-ID"
	loggerKey        = "logger"
	customerIDKey    = "customer_id"
)

// RequestLogger tags every request with an id and logs its outcome.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		reqLog := log.WithField("request_id", id)
		c.Set(loggerKey, reqLog)

		start := time.Now()
		c.Next()

		reqLog.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("http request")
	}
}

// TokenParser is satisfied by *auth.Manager.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// Authenticate resolves the calling customer from a bearer token. With
// requireToken unset an X-Customer-ID header is accepted as well.
func Authenticate(tokens TokenParser, requireToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			id, err := claims.CustomerID()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.Set(customerIDKey, id)
			c.Next()
			return
		}

		if !requireToken {
			if id, err := strconv.ParseInt(c.GetHeader(customerIDHeader), 10, 64); err == nil && id > 0 {
				c.Set(customerIDKey, id)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
	}
}

func customerID(c *gin.Context) int64 {
	return c.GetInt64(customerIDKey)
}
