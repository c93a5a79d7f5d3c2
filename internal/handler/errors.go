package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// HTTPErrorHandler renders the 404 and 500 pages.  Server faults are
// logged with the request that caused them.  JSON clients and requests
// for other statuses get a short body in place of a page.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }

    code := http.StatusInternalServerError
    msg := http.StatusText(code)
    var he *echo.HTTPError
    if errors.As(err, &he) {
        code = he.Code
        if m, ok := he.Message.(string); ok {
            msg = m
        } else {
            msg = http.StatusText(code)
        }
    }

    if code >= http.StatusInternalServerError {
        h.Log.WithError(err).WithFields(logrus.Fields{
            "method": c.Request().Method,
            "uri":    c.Request().RequestURI,
            "status": code,
        }).Error("request failed")
        msg = http.StatusText(code) // never leak internals
    }

    var rerr error
    switch {
    case c.Request().Method == http.MethodHead:
        rerr = c.NoContent(code)
    case wantsJSON(c):
        rerr = c.JSON(code, echo.Map{"error": msg})
    case code == http.StatusNotFound:
        rerr = h.render(c, code, "404", "Not found", struct{ Message string }{msg})
    case code >= http.StatusInternalServerError:
        rerr = h.render(c, code, "500", "Server error", struct{ Message string }{})
    default:
        rerr = c.String(code, msg)
    }
    if rerr != nil {
        h.Log.WithError(rerr).Error("error page failed to render")
    }
}

func wantsJSON(c echo.Context) bool {
    r := c.Request()
    return r.Method == http.MethodDelete ||
        strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
