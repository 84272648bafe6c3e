package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys of the traffic counters shown on the status page.
const (
	KeyReqTotal  = "health:charity:req_total"
	KeyReqErrors = "health:charity:req_errors"
	KeyResTime   = "health:charity:res_time_total"
	KeyResCount  = "health:charity:res_count"
	KeyStartTime = "health:charity:start_time"
	KeyLastReq   = "health:charity:last_request"
	KeyErrorLog  = "health:charity:error_log"
)

// errorLogSize bounds KeyErrorLog.
const errorLogSize = 50

func skipHealth(path string) bool {
	return path == "/" || path == "/reset" || path == "/metrics" ||
		strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon")
}

// HealthMarker counts API requests in Redis and keeps the last 5xx responses.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipHealth(c.Path()) {
			return c.Next()
		}
		ctx := c.Context()
		start := time.Now()
		lastReq, _ := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		rdb.Set(ctx, KeyLastReq, lastReq, 0)
		rdb.Incr(ctx, KeyReqTotal)

		err := c.Next()

		rdb.Incr(ctx, KeyResCount)
		rdb.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds()))
		if status := c.Response().StatusCode(); status >= 500 || err != nil {
			rdb.Incr(ctx, KeyReqErrors)
			entry, _ := json.Marshal(map[string]interface{}{
				"time":     time.Now(),
				"method":   c.Method(),
				"path":     c.OriginalURL(),
				"status":   status,
				"trace_id": GetTraceID(c),
			})
			rdb.LPush(ctx, KeyErrorLog, entry)
			rdb.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
		}
		return err
	}
}
