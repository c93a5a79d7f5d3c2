package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/handler"
)

// RegisterArtists registers the artist pages.
func RegisterArtists(e *echo.Echo, h *handler.Handler) {
	g := e.Group("/artists")
	g.GET("", h.ListArtists)
	g.POST("/search", h.SearchArtists)
	g.GET("/create", h.CreateArtistForm)
	g.POST("/create", h.CreateArtist)
	g.GET("/:id", h.ShowArtist)
	g.DELETE("/:id", h.DeleteArtist)
	g.GET("/:id/edit", h.EditArtistForm)
	g.POST("/:id/edit", h.EditArtist)
}
