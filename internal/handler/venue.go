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

// VenueDetail is the view model of the venue page.
type VenueDetail struct {
    Venue              *model.Venue
    PastShows          []model.ShowListing
    UpcomingShows      []model.ShowListing
    PastShowsCount     int
    UpcomingShowsCount int
}

// SearchPage is the view model of both search result pages.
type SearchPage[T any] struct {
    SearchTerm string
    Count      int
    Results    []T
}

// ListVenues handles GET /venues: every venue grouped by state and city.
func (h *Handler) ListVenues(c echo.Context) error {
    venues, err := h.Venues.ListSummaries(c.Request().Context(), h.Clock.Now())
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "venues", "Venues", struct{ Areas []model.Area }{model.GroupByArea(venues)})
}

// SearchVenues handles POST /venues/search.
func (h *Handler) SearchVenues(c echo.Context) error {
    term := c.FormValue("search_term")
    results, err := h.Venues.Search(c.Request().Context(), term, h.Clock.Now())
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "search_venues", "Venues",
        SearchPage[model.VenueSummary]{SearchTerm: term, Count: len(results), Results: results})
}

// ShowVenue handles GET /venues/:id with the venue's past and upcoming shows.
func (h *Handler) ShowVenue(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx := c.Request().Context()
    v, err := h.Venues.GetByID(ctx, id)
    if errors.Is(err, repository.ErrVenueNotFound) {
        return echo.NewHTTPError(http.StatusNotFound, "Venue not found")
    }
    if err != nil {
        return err
    }
    shows, err := h.Shows.ListForVenue(ctx, id)
    if err != nil {
        return err
    }
    past, upcoming := model.PartitionShows(shows, h.Clock.Now())
    return h.render(c, http.StatusOK, "show_venue", v.Name, VenueDetail{
        Venue:              v,
        PastShows:          past,
        UpcomingShows:      upcoming,
        PastShowsCount:     len(past),
        UpcomingShowsCount: len(upcoming),
    })
}

// CreateVenueForm handles GET /venues/create.
func (h *Handler) CreateVenueForm(c echo.Context) error {
    return h.render(c, http.StatusOK, "new_venue", "New venue", FormPage{Form: VenueForm{}, Errors: map[string]string{}})
}

// CreateVenue handles POST /venues/create.
func (h *Handler) CreateVenue(c echo.Context) error {
    params, err := c.FormParams()
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
    }
    form := venueFormFromValues(params)
    failed := fmt.Sprintf("An error occurred. Venue %s could not be listed.", form.Name)

    if err := c.Validate(&form); err != nil {
        h.flashNow(c, utils.FlashError, failed)
        return h.render(c, http.StatusBadRequest, "new_venue", "New venue", FormPage{Form: form, Errors: fieldErrors(err)})
    }

    v := &model.Venue{CreatedAt: h.Clock.Now()}
    form.apply(v)
    if err := h.Venues.Create(c.Request().Context(), v); err != nil {
        h.logFailure(c, err, "create venue")
        h.flashNext(c, utils.FlashError, failed)
        return redirect(c, "/")
    }

    h.committed(c, queue.NewActivityEvent(queue.VenueCreated, v.ID, v.Name, h.Clock.Now()))
    h.flashNext(c, utils.FlashSuccess, fmt.Sprintf("Venue %s was successfully listed!", v.Name))
    return redirect(c, "/")
}

// EditVenueForm handles GET /venues/:id/edit, pre-filled from the record.
func (h *Handler) EditVenueForm(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    v, err := h.Venues.GetByID(c.Request().Context(), id)
    if errors.Is(err, repository.ErrVenueNotFound) {
        return echo.NewHTTPError(http.StatusNotFound, "Venue not found")
    }
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "edit_venue", "Edit venue",
        FormPage{ID: id, Form: venueFormFromModel(v), Errors: map[string]string{}})
}

// EditVenue handles POST /venues/:id/edit.  The record changes only when
// the whole form is valid.
func (h *Handler) EditVenue(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return err
    }
    ctx := c.Request().Context()
    v, err := h.Venues.GetByID(ctx, id)
    if errors.Is(err, repository.ErrVenueNotFound) {
        return echo.NewHTTPError(http.StatusNotFound, "Venue not found")
    }
    if err != nil {
        return err
    }

    params, err := c.FormParams()
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
    }
    form := venueFormFromValues(params)
    if err := c.Validate(&form); err != nil {
        h.flashNow(c, utils.FlashError, "Venue was not edited successfully.")
        return h.render(c, http.StatusBadRequest, "edit_venue", "Edit venue", FormPage{ID: id, Form: form, Errors: fieldErrors(err)})
    }

    form.apply(v)
    detail := fmt.Sprintf("/venues/%d", id)
    if err := h.Venues.Update(ctx, v); err != nil {
        if errors.Is(err, repository.ErrVenueNotFound) {
            return echo.NewHTTPError(http.StatusNotFound, "Venue not found")
        }
        h.logFailure(c, err, "update venue")
        h.flashNext(c, utils.FlashError, "Venue was not edited successfully.")
        return redirect(c, detail)
    }

    h.committed(c, queue.NewActivityEvent(queue.VenueUpdated, v.ID, v.Name, h.Clock.Now()))
    h.flashNext(c, utils.FlashSuccess, fmt.Sprintf("Venue %s edited successfully", v.Name))
    return redirect(c, detail)
}

// DeleteVenue handles DELETE /venues/:id.  The venue and its shows go in
// one transaction; the response is JSON for the page script.
func (h *Handler) DeleteVenue(c echo.Context) error {
    id, err := strconvID(c)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "venue not found"})
    }
    res, err := h.Venues.DeleteCascade(c.Request().Context(), id)
    switch {
    case errors.Is(err, repository.ErrVenueNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "venue not found"})
    case err != nil:
        h.logFailure(c, err, "delete venue")
        h.flashNext(c, utils.FlashError, "An error occurred. Venue could not be deleted.")
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not delete venue"})
    }

    h.Log.WithField("venue_id", id).WithField("shows_deleted", res.ShowsDeleted).Info("venue deleted")
    h.committed(c, queue.NewActivityEvent(queue.VenueDeleted, id, res.Name, h.Clock.Now()))
    h.flashNext(c, utils.FlashSuccess, fmt.Sprintf("Venue %s was successfully deleted.", res.Name))
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}
