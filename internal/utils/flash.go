package utils // package utils provides the signed flash-message cookie shared by handlers

import (
    "errors"
    "net/http"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for signing flash payloads
)

// FlashCookie is the name of the cookie carrying the pending notice.
const FlashCookie = "fyyur_flash"

// FlashTTL bounds how long an unread notice survives.
const FlashTTL = 5 * time.Minute

// Flash categories understood by the layout template.
const (
    FlashSuccess = "success"
    FlashError   = "error"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
    Category string // success or error
    Message  string // human readable text
}

type flashClaims struct {
    Category string `json:"category"`
    Message  string `json:"message"`
    jwt.RegisteredClaims
}

// ErrNoFlash is returned by ParseFlash when no valid notice is pending.
var ErrNoFlash = errors.New("no flash message")

// NewFlashCookie signs f as an HS256 JWT and wraps it in an HTTP-only
// cookie valid for FlashTTL.
func NewFlashCookie(secret string, f Flash, now time.Time) (*http.Cookie, error) {
    exp := now.Add(FlashTTL)
    claims := flashClaims{
        Category: f.Category,
        Message:  f.Message,
        RegisteredClaims: jwt.RegisteredClaims{
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return nil, err
    }
    return &http.Cookie{
        Name:     FlashCookie,
        Value:    signed,
        Path:     "/",
        Expires:  exp,
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    }, nil
}

// ParseFlash verifies a cookie value produced by NewFlashCookie.  Tampered,
// expired or foreign tokens yield ErrNoFlash.
func ParseFlash(secret, value string, now time.Time) (Flash, error) {
    var claims flashClaims
    _, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (any, error) {
        return []byte(secret), nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithTimeFunc(func() time.Time { return now }),
        jwt.WithExpirationRequired(),
    )
    if err != nil {
        return Flash{}, ErrNoFlash
    }
    return Flash{Category: claims.Category, Message: claims.Message}, nil
}

// ClearFlashCookie returns a cookie that deletes the pending notice.
func ClearFlashCookie() *http.Cookie {
    return &http.Cookie{
        Name:     FlashCookie,
        Value:    "",
        Path:     "/",
        MaxAge:   -1,
        Expires:  time.Unix(0, 0),
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    }
}
