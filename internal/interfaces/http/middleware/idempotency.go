package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"digimarket.backend/pkg/logger"
	"digimarket.backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	idempotencyProcessing = "processing"
)

var (
	redisEnabled = redis.Enabled
	redisGet     = redis.Get
	redisSet     = redis.Set
	redisSetNX   = redis.SetNX
	redisDel     = redis.Del
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response of a successful request
// carrying the same Idempotency-Key for the same user. It is a no-op without
// the header or without redis.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || !redisEnabled() {
			c.Next()
			return
		}

		userID, _ := GetUserID(c)
		storageKey := fmt.Sprintf("idempotency:%s:%s:%s", userID, c.FullPath(), key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		if err == nil {
			if val == idempotencyProcessing {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"ok":      false,
					"code":    "IDEMPOTENCY_CONFLICT",
					"message": "Anfrage wird bereits verarbeitet",
					"error":   "Anfrage wird bereits verarbeitet",
				})
				return
			}

			c.Header("X-Idempotency-Hit", "true")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(val))
			c.Abort()
			return
		} else if !redis.IsNil(err) {
			logger.Warn(ctx, "Idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, idempotencyProcessing, LockDuration)
		if err != nil || !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"ok":      false,
				"code":    "IDEMPOTENCY_CONFLICT",
				"message": "Anfrage wird bereits verarbeitet",
				"error":   "Anfrage wird bereits verarbeitet",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			_ = redisSet(ctx, storageKey, w.body.String(), RetentionDuration)
		} else {
			// allow a retry
			_ = redisDel(ctx, storageKey)
		}
	}
}
