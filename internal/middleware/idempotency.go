package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	idempotencyLockTTL   = 30 * time.Second
	idempotencyResultTTL = 24 * time.Hour
)

var ErrRequestInFlight = apperror.New("PROCESSING", "A request with this idempotency key is still being processed", http.StatusConflict)

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func idempotencyKeys(c *gin.Context, key string) (cacheKey, lockKey string) {
	cacheKey = fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), c.GetString(ContextUserID), key)
	return cacheKey, cacheKey + ":lock"
}

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key. Server errors are not stored so the client can retry.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader(HeaderIdempotencyKey)
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		logger := contextutil.GetLogger(ctx, zap.L()).Named("idempotency")
		cacheKey, lockKey := idempotencyKeys(c, idempKey)

		val, err := rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached cachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				c.Header(HeaderReplayed, "true")
				c.Data(cached.Status, "application/json; charset=utf-8", []byte(cached.Body))
				c.Abort()
				return
			}
			logger.Warn("discarding unreadable idempotency record", zap.String("key", cacheKey))
		} else if err != redis.Nil {
			logger.Warn("idempotency lookup failed, processing without replay", zap.Error(err))
			c.Next()
			return
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			logger.Warn("idempotency lock failed, processing without replay", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Abort(c, ErrRequestInFlight)
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec

		c.Next()

		if status := rec.Status(); status < http.StatusInternalServerError {
			payload, _ := json.Marshal(cachedResponse{Status: status, Body: rec.body.String()})
			if err := rdb.Set(ctx, cacheKey, string(payload), idempotencyResultTTL).Err(); err != nil {
				logger.Warn("store idempotency record failed", zap.Error(err))
			}
		}
		if err := rdb.Del(ctx, lockKey).Err(); err != nil {
			logger.Warn("release idempotency lock failed", zap.Error(err))
		}
	}
}
