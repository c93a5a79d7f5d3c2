package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fyyur/internal/model"
    "github.com/iliyamo/fyyur/internal/queue"
    "github.com/iliyamo/fyyur/internal/repository"
    "github.com/iliyamo/fyyur/internal/utils"
)

const (
    showListed    = "Show was successfully listed!"
    showNotListed = "Show was not successfully listed."
)

// ListShows handles GET /shows.
func (h *Handler) ListShows(c echo.Context) error {
    shows, err := h.Shows.ListAll(c.Request().Context())
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "shows", "Shows", struct{ Shows []model.ShowListing }{shows})
}

// CreateShowForm handles GET /shows/create.
func (h *Handler) CreateShowForm(c echo.Context) error {
    return h.render(c, http.StatusOK, "new_show", "New show", FormPage{Form: ShowForm{}, Errors: map[string]string{}})
}

// CreateShow handles POST /shows/create.  Unknown artist or venue ids
// are reported on the form like any other validation failure.
func (h *Handler) CreateShow(c echo.Context) error {
    params, err := c.FormParams()
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
    }
    form := showFormFromValues(params)
    invalid := func(errs map[string]string) error {
        h.flashNow(c, utils.FlashError, showNotListed)
        return h.render(c, http.StatusBadRequest, "new_show", "New show", FormPage{Form: form, Errors: errs})
    }
    if err := c.Validate(&form); err != nil {
        return invalid(fieldErrors(err))
    }

    s := &model.Show{}
    s.ArtistID, _ = strconv.ParseUint(form.ArtistID, 10, 64) // validated as digits
    s.VenueID, _ = strconv.ParseUint(form.VenueID, 10, 64)
    s.StartTime, _ = ParseStartTime(form.StartTime)

    if err := h.Shows.Create(c.Request().Context(), s); err != nil {
        if errors.Is(err, repository.ErrInvalidReference) {
            return invalid(map[string]string{
                "artist_id": "No artist or venue exists with this id.",
                "venue_id":  "No artist or venue exists with this id.",
            })
        }
        h.logFailure(c, err, "create show")
        h.flashNext(c, utils.FlashError, showNotListed)
        return redirect(c, "/")
    }

    ev := queue.NewActivityEvent(queue.ShowCreated, s.ID, "", h.Clock.Now())
    ev.ArtistID, ev.VenueID = s.ArtistID, s.VenueID
    h.committed(c, ev)
    h.flashNext(c, utils.FlashSuccess, showListed)
    return redirect(c, "/")
}
