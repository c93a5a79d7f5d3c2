package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/handler"
)

// RegisterVenues registers the home page and the venue pages.
func RegisterVenues(e *echo.Echo, h *handler.Handler) {
	e.GET("/", h.Home)

	g := e.Group("/venues")
	g.GET("", h.ListVenues)
	g.POST("/search", h.SearchVenues)
	// Static segments win over :id, so /venues/create never reaches ShowVenue.
	g.GET("/create", h.CreateVenueForm)
	g.POST("/create", h.CreateVenue)
	g.GET("/:id", h.ShowVenue)
	g.DELETE("/:id", h.DeleteVenue)
	g.GET("/:id/edit", h.EditVenueForm)
	g.POST("/:id/edit", h.EditVenue)
}
