package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/http/respond"
	"github.com/MrJamesThe3rd/subx/internal/logging"
)

type Config struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// tokenBucket refills whole intervals since the last refill, then takes one token.
// It returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// Limiter is a Redis token bucket shared by every API instance. Redis errors fail open:
// a broken limiter must not take purchases down with it.
type Limiter struct {
	cfg    Config
	rdb    redis.Scripter
	now    func() time.Time
	logger *zap.Logger
}

func New(cfg Config, rdb redis.Scripter, logger *zap.Logger) *Limiter {
	return &Limiter{cfg: cfg, rdb: rdb, now: time.Now, logger: logging.OrNop(logger)}
}

// NewRedisClient connects and pings. Callers treat an error as "run without Redis".
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}

	return client, nil
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l == nil || !l.cfg.Enabled || l.rdb == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.key(r)

		vals, err := tokenBucket.Run(r.Context(), l.rdb, []string{key},
			l.now().UnixMilli(),
			l.cfg.Capacity,
			l.cfg.RefillTokens,
			l.cfg.RefillInterval.Milliseconds(),
			int64(l.cfg.TTL/time.Second),
		).Result()
		if err != nil {
			l.logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			next.ServeHTTP(w, r)

			return
		}

		arr, ok := vals.([]any)
		if !ok || len(arr) != 3 {
			l.logger.Warn("unexpected rate limiter result", zap.String("key", key), zap.Any("result", vals))
			next.ServeHTTP(w, r)

			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(asInt64(arr[1]), 10))

		if asInt64(arr[0]) != 1 {
			secs := int(math.Ceil(float64(asInt64(arr[2])) / 1000.0))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 0)))
			respond.Error(w, http.StatusTooManyRequests, "TooManyRequests")

			return
		}

		next.ServeHTTP(w, r)
	})
}

// key buckets by client address and route pattern.
func (l *Limiter) key(r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	if ip == "" {
		ip = "unknown"
	}

	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			route = pattern
		}
	}

	return strings.Join([]string{l.cfg.Prefix, "ip", ip, "route", r.Method + " " + route}, ":")
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}

	return 0
}
