package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelarangelrhellorh/rhelloflow/pkg/requestcontext"
)

const throttleKeyPrefix = "del:throttle:"

// Throttle rate-limits destructive operations with a fixed window counter in
// Redis, keyed per actor (per client IP for anonymous callers). A nil client
// disables the throttle. Redis failures fail open with a warning: losing the
// throttle must not take the deletion surface down with it.
func Throttle(client *redis.Client, limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Reads are never throttled; the budget is for destructive calls.
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			subject := GetActor(ctx).ID
			if subject == "" || subject == "anonymous" {
				subject = "ip:" + requestcontext.ClientIP(ctx)
			}
			key := fmt.Sprintf("%s%s:%d", throttleKeyPrefix, subject, time.Now().Unix()/int64(window.Seconds()))

			pipe := client.TxPipeline()
			count := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				logger.WarnContext(ctx, "throttle check failed, allowing request",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			if count.Val() > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"unavailable","error_description":"too many deletion requests, slow down"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
