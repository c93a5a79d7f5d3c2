package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/handler"
)

// RegisterShows registers the show list and the booking form.  Shows
// have no detail, edit or delete pages.
func RegisterShows(e *echo.Echo, h *handler.Handler) {
	e.GET("/shows", h.ListShows)
	e.GET("/shows/create", h.CreateShowForm)
	e.POST("/shows/create", h.CreateShow)
}
