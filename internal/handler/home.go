package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fyyur/internal/model"
)

// HomePage is the view model of the home page.
type HomePage struct {
    Venues  []model.VenueSummary
    Artists []model.ArtistSummary
}

// Home handles GET /: pending notice plus the latest venues and artists.
func (h *Handler) Home(c echo.Context) error {
    ctx := c.Request().Context()
    venues, err := h.Venues.Recent(ctx, recentLimit)
    if err != nil {
        return err
    }
    artists, err := h.Artists.Recent(ctx, recentLimit)
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "home", "", HomePage{Venues: venues, Artists: artists})
}
