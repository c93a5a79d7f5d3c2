package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"
    "golang.org/x/time/rate"

    "github.com/iliyamo/fyyur/internal/config"
)

var limiterScript = redis.NewScript(`
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
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// decision is the outcome of one token bucket check.
type decision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

// localLimiter keeps one x/time/rate bucket per key in process memory.
// It serves when Redis is not configured or not answering.
type localLimiter struct {
    mu       sync.Mutex
    limiters map[string]*localEntry
    limit    rate.Limit
    burst    int
    ttl      time.Duration
}

type localEntry struct {
    lim      *rate.Limiter
    lastSeen time.Time
}

func newLocalLimiter(cfg config.RateLimitConfig) *localLimiter {
    perSecond := float64(cfg.RefillTokens) / cfg.RefillInterval.Seconds()
    return &localLimiter{
        limiters: make(map[string]*localEntry),
        limit:    rate.Limit(perSecond),
        burst:    cfg.Capacity,
        ttl:      cfg.TTL,
    }
}

func (l *localLimiter) allow(key string, now time.Time) decision {
    l.mu.Lock()
    defer l.mu.Unlock()

    if len(l.limiters) > 10000 {
        for k, e := range l.limiters {
            if now.Sub(e.lastSeen) > l.ttl {
                delete(l.limiters, k)
            }
        }
    }
    e, ok := l.limiters[key]
    if !ok {
        e = &localEntry{lim: rate.NewLimiter(l.limit, l.burst)}
        l.limiters[key] = e
    }
    e.lastSeen = now

    r := e.lim.ReserveN(now, 1)
    if d := r.DelayFrom(now); d > 0 {
        r.CancelAt(now)
        return decision{allowed: false, retry: d}
    }
    return decision{allowed: true, remaining: int64(e.lim.TokensAt(now))}
}

// NewTokenBucket limits requests per key (see RATE_LIMIT_KEY_STRATEGY)
// with a Redis token bucket shared by every instance.  Without Redis, or
// when a Redis call fails, an in-process limiter with the same capacity
// and refill applies.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, m *Metrics, log logrus.FieldLogger) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if log == nil {
        log = logrus.StandardLogger()
    }
    local := newLocalLimiter(cfg)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            now := time.Now()

            backend := "local"
            var d decision
            var ok bool
            if rdb != nil {
                d, ok = redisAllow(c, rdb, cfg, key, now, log)
                backend = "redis"
            }
            if !ok {
                d = local.allow(key, now)
                backend = "local"
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))

            if !d.allowed {
                secs := int(math.Ceil(d.retry.Seconds()))
                if secs < 1 {
                    secs = 1
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                m.rejected(backend)
                if cfg.Debug {
                    log.WithFields(logrus.Fields{"key": key, "backend": backend, "retry": d.retry.String()}).Info("ratelimit: blocked")
                }
                return c.JSON(http.StatusTooManyRequests, map[string]any{
                    "error":       "too_many_requests",
                    "message":     "rate limit exceeded",
                    "retry_after": secs,
                })
            }

            if cfg.Debug {
                c.Response().Header().Set("X-RateLimit-Key", key)
            }
            return next(c)
        }
    }
}

// redisAllow runs the bucket script.  ok is false when Redis could not
// answer and the caller should fall back.
func redisAllow(c echo.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string, now time.Time, log logrus.FieldLogger) (decision, bool) {
    args := []interface{}{
        now.UnixMilli(),
        cfg.Capacity,
        cfg.RefillTokens,
        cfg.RefillInterval.Milliseconds(),
        int64(cfg.TTL / time.Second),
    }
    vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
    if err != nil {
        log.WithError(err).WithField("key", key).Warn("ratelimit: redis unavailable, using local limiter")
        return decision{}, false
    }
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        log.WithField("key", key).Warnf("ratelimit: unexpected script result %#v", vals)
        return decision{}, false
    }
    return decision{
        allowed:   fmt.Sprint(arr[0]) == "1",
        remaining: asInt64(arr[1]),
        retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
    }, true
}

func asInt64(v interface{}) int64 {
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

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "route":
        parts = append(parts, "route", route)
    default: // "ip_route"
        parts = append(parts, "ip", ip, "route", route)
    }
    return strings.Join(parts, ":")
}
