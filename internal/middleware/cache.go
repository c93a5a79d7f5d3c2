package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/fyyur/internal/config"
    "github.com/iliyamo/fyyur/internal/utils"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    size      int64
    limit     int64
    truncated bool
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit > 0 && cw.size+int64(len(b)) > cw.limit {
        cw.truncated = true
    } else {
        cw.buf.Write(b)
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// CSRFCookie is the cookie echo's CSRF middleware keeps the token in.
// Pages rendered with CSRF protection embed that token, so the cache keys
// them per visitor and tolerates the cookie being refreshed.
const CSRFCookie = "_csrf"

// csrfContextKey is where echo's CSRF middleware stores the token.
const csrfContextKey = "csrf"

// dataChangedKey flags a request that committed a write.
const dataChangedKey = "cache_data_changed"

// MarkDataChanged records that the current request changed stored data.
// Once it completes successfully the page cache drops every cached page.
func MarkDataChanged(c echo.Context) { c.Set(dataChangedKey, true) }

// DataChanged reports whether MarkDataChanged was called for c.
func DataChanged(c echo.Context) bool {
    changed, _ := c.Get(dataChangedKey).(bool)
    return changed
}

// generationKey holds the counter embedded in every page key.  Bumping it
// orphans every cached page at once; orphans expire through their TTL.
func generationKey(cfg config.CacheConfig) string { return cfg.Prefix + ":gen" }

// cacheKeyFrom builds a stable cache key from the request path (not the
// route template, so /venues/1 and /venues/2 differ), the strategy and the
// current generation.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context, gen int64) string {
    r := c.Request()
    parts := []string{r.URL.Path}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
    case "method_route":
        parts = append(parts, "method", r.Method)
    case "method_route_query":
        parts = append(parts, "method", r.Method, "q", r.URL.RawQuery)
    default: // "route_query"
        parts = append(parts, "q", r.URL.RawQuery)
    }
    if tok, ok := c.Get(csrfContextKey).(string); ok && tok != "" {
        parts = append(parts, "csrf", tok)
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%d:%x", cfg.Prefix, gen, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    hdr := make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, hdr, bs[8+hlen:], true
}

// noStore reports whether the handler asked for the response not to be
// stored, as /healthz and /metrics do.
func noStore(h http.Header) bool {
    return strings.Contains(strings.ToLower(h.Get("Cache-Control")), "no-store")
}

// setsSessionCookie reports whether the response sets any cookie other
// than the CSRF one.
func setsSessionCookie(h http.Header) bool {
    for _, v := range h.Values(echo.HeaderSetCookie) {
        if !strings.HasPrefix(v, CSRFCookie+"=") {
            return true
        }
    }
    return false
}

// NewRedisCache caches successful page renders in Redis, storing headers
// and body so a hit is byte-identical to the original response.
//
// A page is stored only when it answered 200 without Cache-Control:
// no-store and without setting cookies other than the CSRF one, so flash
// notices never leak between visitors.  Requests carrying a pending flash
// notice skip the cache, as do requests matched by skip.  Requests with
// other methods pass through untouched unless the handler called
// MarkDataChanged; those bump the generation, which invalidates all pages.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, m *Metrics, log logrus.FieldLogger, skip echomw.Skipper) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if log == nil {
        log = logrus.StandardLogger()
    }
    if skip == nil {
        skip = echomw.DefaultSkipper
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if skip(c) {
                return next(c)
            }
            ctx := c.Request().Context()
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                err := next(c)
                if err == nil && DataChanged(c) {
                    if ierr := rdb.Incr(context.WithoutCancel(ctx), generationKey(cfg)).Err(); ierr != nil {
                        log.WithError(ierr).WithField("uri", c.Request().RequestURI).Warn("cache: bump generation")
                    }
                }
                return err
            }
            if ck, err := c.Cookie(utils.FlashCookie); err == nil && ck.Value != "" {
                m.cacheResult("bypass")
                return next(c)
            }

            gen, err := rdb.Get(ctx, generationKey(cfg)).Int64()
            if err != nil && !errors.Is(err, redis.Nil) {
                log.WithError(err).Debug("cache: read generation")
                m.cacheResult("bypass")
                return next(c)
            }
            key := cacheKeyFrom(cfg, c, gen)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    m.cacheResult("hit")
                    return c.Blob(status, hdr.Get(echo.HeaderContentType), body)
                }
            }

            m.cacheResult("miss")
            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            hdr := c.Response().Header().Clone()
            if cw.status != http.StatusOK || cw.truncated || noStore(hdr) || setsSessionCookie(hdr) {
                return nil
            }
            hdr.Del("X-Cache")
            hdr.Del(echo.HeaderSetCookie)
            payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
            if err != nil {
                return nil
            }
            if err := rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
                log.WithError(err).WithField("uri", c.Request().RequestURI).Warn("cache: store page")
            }
            return nil
        }
    }
}
