package handler

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fyyur/internal/model"
    "github.com/iliyamo/fyyur/internal/queue"
    "github.com/iliyamo/fyyur/internal/repository"
    "github.com/iliyamo/fyyur/internal/utils"
)

// ArtistDetail is the view model of the artist page.
type ArtistDetail struct {
    Artist             *model.Artist
    PastShows          []model.ShowListing
    UpcomingShows      []model.ShowListing
    PastShowsCount     int
    UpcomingShowsCount int
}

var errArtistNotFound = echo.NewHTTPError(http.StatusNotFound, "Artist not found")

// ListArtists handles GET /artists.
func (h *Handler) ListArtists(c echo.Context) error {
    artists, err := h.Artists.ListAll(c.Request().Context())
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "artists", "Artists", struct{ Artists []model.ArtistSummary }{artists})
}

// SearchArtists handles POST /artists/search.
func (h *Handler) SearchArtists(c echo.Context) error {
    term := c.FormValue("search_term")
    results, err := h.Artists.Search(c.Request().Context(), term, h.Clock.Now())
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "search_artists", "Artists",
        SearchPage[model.ArtistSummary]{SearchTerm: term, Count: len(results), Results: results})
}

// ShowArtist handles GET /artists/:id.
func (h *Handler) ShowArtist(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx := c.Request().Context()
    a, err := h.Artists.GetByID(ctx, id)
    if errors.Is(err, repository.ErrArtistNotFound) {
        return errArtistNotFound
    }
    if err != nil {
        return err
    }
    shows, err := h.Shows.ListForArtist(ctx, id)
    if err != nil {
        return err
    }
    past, upcoming := model.PartitionShows(shows, h.Clock.Now())
    return h.render(c, http.StatusOK, "show_artist", a.Name, ArtistDetail{
        Artist:             a,
        PastShows:          past,
        UpcomingShows:      upcoming,
        PastShowsCount:     len(past),
        UpcomingShowsCount: len(upcoming),
    })
}

// CreateArtistForm handles GET /artists/create.
func (h *Handler) CreateArtistForm(c echo.Context) error {
    return h.render(c, http.StatusOK, "new_artist", "New artist", FormPage{Form: ArtistForm{}, Errors: map[string]string{}})
}

// CreateArtist handles POST /artists/create.
func (h *Handler) CreateArtist(c echo.Context) error {
    params, err := c.FormParams()
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
    }
    form := artistFormFromValues(params)
    if err := c.Validate(&form); err != nil {
        h.flashNow(c, utils.FlashError, "Artist was not successfully listed.")
        return h.render(c, http.StatusBadRequest, "new_artist", "New artist", FormPage{Form: form, Errors: fieldErrors(err)})
    }

    a := &model.Artist{CreatedAt: h.Clock.Now()}
    form.apply(a)
    if err := h.Artists.Create(c.Request().Context(), a); err != nil {
        h.logFailure(c, err, "create artist")
        h.flashNext(c, utils.FlashError, "Artist was not successfully listed.")
        return redirect(c, "/")
    }

    h.committed(c, queue.NewActivityEvent(queue.ArtistCreated, a.ID, a.Name, h.Clock.Now()))
    h.flashNext(c, utils.FlashSuccess, fmt.Sprintf("Artist %s was successfully listed!", a.Name))
    return redirect(c, "/")
}

// EditArtistForm handles GET /artists/:id/edit.
func (h *Handler) EditArtistForm(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    a, err := h.Artists.GetByID(c.Request().Context(), id)
    if errors.Is(err, repository.ErrArtistNotFound) {
        return errArtistNotFound
    }
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "edit_artist", "Edit artist",
        FormPage{ID: id, Form: artistFormFromModel(a), Errors: map[string]string{}})
}

// EditArtist handles POST /artists/:id/edit.
func (h *Handler) EditArtist(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx := c.Request().Context()
    a, err := h.Artists.GetByID(ctx, id)
    if errors.Is(err, repository.ErrArtistNotFound) {
        return errArtistNotFound
    }
    if err != nil {
        return err
    }

    params, err := c.FormParams()
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
    }
    form := artistFormFromValues(params)
    if err := c.Validate(&form); err != nil {
        h.flashNow(c, utils.FlashError, "Artist was not edited successfully.")
        return h.render(c, http.StatusBadRequest, "edit_artist", "Edit artist", FormPage{ID: id, Form: form, Errors: fieldErrors(err)})
    }

    form.apply(a)
    detail := fmt.Sprintf("/artists/%d", id)
    if err := h.Artists.Update(ctx, a); err != nil {
        if errors.Is(err, repository.ErrArtistNotFound) {
            return errArtistNotFound
        }
        h.logFailure(c, err, "update artist")
        h.flashNext(c, utils.FlashError, "Artist was not edited successfully.")
        return redirect(c, detail)
    }

    h.committed(c, queue.NewActivityEvent(queue.ArtistUpdated, a.ID, a.Name, h.Clock.Now()))
    h.flashNext(c, utils.FlashSuccess, fmt.Sprintf("Artist %s was successfully edited!", a.Name))
    return redirect(c, detail)
}

// DeleteArtist handles DELETE /artists/:id.
func (h *Handler) DeleteArtist(c echo.Context) error {
    id, err := strconvID(c)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "artist not found"})
    }
    res, err := h.Artists.DeleteCascade(c.Request().Context(), id)
    switch {
    case errors.Is(err, repository.ErrArtistNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "artist not found"})
    case err != nil:
        h.logFailure(c, err, "delete artist")
        h.flashNext(c, utils.FlashError, "An error occurred. Artist could not be deleted.")
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not delete artist"})
    }

    h.Log.WithField("artist_id", id).WithField("shows_deleted", res.ShowsDeleted).Info("artist deleted")
    h.committed(c, queue.NewActivityEvent(queue.ArtistDeleted, id, res.Name, h.Clock.Now()))
    h.flashNext(c, utils.FlashSuccess, fmt.Sprintf("Artist %s was successfully deleted.", res.Name))
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}
