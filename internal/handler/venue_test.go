package handler

import (
    "context"
    "errors"
    "net/http"
    "net/url"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/fyyur/internal/model"
    "github.com/iliyamo/fyyur/internal/queue"
    "github.com/iliyamo/fyyur/internal/utils"
)

func (env *testEnv) seedVenue(t *testing.T, name, city, state string) *model.Venue {
    t.Helper()
    v := &model.Venue{Name: name, City: city, State: state, Address: "1 Main St", Genres: []string{"Jazz"}}
    require.NoError(t, fakeVenues{env.db}.Create(context.Background(), v))
    return v
}

func (env *testEnv) seedArtist(t *testing.T, name string) *model.Artist {
    t.Helper()
    a := &model.Artist{Name: name, City: "San Francisco", State: "CA", Genres: []string{"Jazz"}}
    require.NoError(t, fakeArtists{env.db}.Create(context.Background(), a))
    return a
}

func (env *testEnv) seedShow(t *testing.T, artistID, venueID uint64, start time.Time) *model.Show {
    t.Helper()
    s := &model.Show{ArtistID: artistID, VenueID: venueID, StartTime: start}
    require.NoError(t, fakeShows{env.db}.Create(context.Background(), s))
    return s
}

func TestCreateVenue(t *testing.T) {
    env := newTestEnv(t)

    rec := env.call(http.MethodPost, "/venues/create", venueValues("The Musical Hop"), env.h.CreateVenue)

    assert.Equal(t, http.StatusSeeOther, rec.Code)
    assert.Equal(t, "/", rec.Header().Get("Location"))
    f, ok := flash(t, rec)
    require.True(t, ok)
    assert.Equal(t, utils.Flash{Category: utils.FlashSuccess, Message: "Venue The Musical Hop was successfully listed!"}, f)

    require.Len(t, env.db.venues, 1)
    v := env.db.venues[1]
    assert.Equal(t, []string{"Jazz", "Reggae"}, v.Genres)
    assert.True(t, v.SeekingTalent)
    assert.Equal(t, testNow, v.CreatedAt)
    assert.Equal(t, []string{queue.VenueCreated}, env.pub.kinds())

    list := env.call(http.MethodGet, "/venues", nil, env.h.ListVenues)
    assert.Equal(t, http.StatusOK, list.Code)
    assert.Contains(t, list.Body.String(), "San Francisco, CA")
    assert.Contains(t, list.Body.String(), "The Musical Hop")
}

func TestCreateVenueValidationFailure(t *testing.T) {
    env := newTestEnv(t)
    form := venueValues("The Musical Hop")
    form.Del("city")
    form.Set("state", "ZZ")

    rec := env.call(http.MethodPost, "/venues/create", form, env.h.CreateVenue)

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    body := rec.Body.String()
    assert.Contains(t, body, "An error occurred. Venue The Musical Hop could not be listed.")
    assert.Contains(t, body, "This field is required.")
    assert.Contains(t, body, "Not a valid choice.")
    assert.Empty(t, env.db.venues)
    assert.Empty(t, env.pub.kinds())
}

func TestCreateVenuePersistenceFailure(t *testing.T) {
    env := newTestEnv(t)
    env.db.failErr = errors.New("connection reset")

    rec := env.call(http.MethodPost, "/venues/create", venueValues("The Musical Hop"), env.h.CreateVenue)

    assert.Equal(t, http.StatusSeeOther, rec.Code)
    f, ok := flash(t, rec)
    require.True(t, ok)
    assert.Equal(t, utils.FlashError, f.Category)
    assert.Equal(t, "An error occurred. Venue The Musical Hop could not be listed.", f.Message)
    assert.NotContains(t, f.Message, "connection reset")
    assert.Empty(t, env.pub.kinds())
}

func TestShowVenueSplitsPastAndUpcoming(t *testing.T) {
    env := newTestEnv(t)
    v := env.seedVenue(t, "The Musical Hop", "San Francisco", "CA")
    a := env.seedArtist(t, "Guns N Petals")
    env.seedShow(t, a.ID, v.ID, testNow.Add(-48*time.Hour))
    env.seedShow(t, a.ID, v.ID, testNow) // starting now counts as past
    env.seedShow(t, a.ID, v.ID, testNow.Add(72*time.Hour))

    rec := env.call(http.MethodGet, "/venues/1", nil, env.h.ShowVenue, "id", "1")

    assert.Equal(t, http.StatusOK, rec.Code)
    body := rec.Body.String()
    assert.Contains(t, body, "1 Upcoming Show<")
    assert.Contains(t, body, "2 Past Shows")
    assert.Contains(t, body, "Guns N Petals")
}

func TestShowVenueNotFound(t *testing.T) {
    env := newTestEnv(t)

    rec := env.call(http.MethodGet, "/venues/9", nil, env.h.ShowVenue, "id", "9")
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Contains(t, rec.Body.String(), "Venue not found")

    rec = env.call(http.MethodGet, "/venues/abc", nil, env.h.ShowVenue, "id", "abc")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchVenues(t *testing.T) {
    env := newTestEnv(t)
    hop := env.seedVenue(t, "The Musical Hop", "San Francisco", "CA")
    env.seedVenue(t, "The Dueling Pianos Bar", "New York", "NY")
    env.seedVenue(t, "Park Square Live Music & Coffee", "San Francisco", "CA")
    a := env.seedArtist(t, "Guns N Petals")
    env.seedShow(t, a.ID, hop.ID, testNow.Add(time.Hour))

    rec := env.call(http.MethodPost, "/venues/search", url.Values{"search_term": {"music"}}, env.h.SearchVenues)

    assert.Equal(t, http.StatusOK, rec.Code)
    body := rec.Body.String()
    assert.Contains(t, body, `Number of search results for "music": 2`)
    assert.Contains(t, body, "1 upcoming shows")
    assert.NotContains(t, body, "Dueling")
}

func TestEditVenueFormPrefills(t *testing.T) {
    env := newTestEnv(t)
    env.seedVenue(t, "The Musical Hop", "San Francisco", "CA")

    rec := env.call(http.MethodGet, "/venues/1/edit", nil, env.h.EditVenueForm, "id", "1")

    assert.Equal(t, http.StatusOK, rec.Code)
    body := rec.Body.String()
    assert.Contains(t, body, `value="The Musical Hop"`)
    assert.Contains(t, body, `<option value="Jazz" selected>`)
    assert.Contains(t, body, `<option value="CA" selected>`)
}

func TestEditVenue(t *testing.T) {
    env := newTestEnv(t)
    env.seedVenue(t, "The Musical Hop", "San Francisco", "CA")

    rec := env.call(http.MethodPost, "/venues/1/edit", venueValues("The Musical Hop Annex"), env.h.EditVenue, "id", "1")

    assert.Equal(t, http.StatusSeeOther, rec.Code)
    assert.Equal(t, "/venues/1", rec.Header().Get("Location"))
    f, ok := flash(t, rec)
    require.True(t, ok)
    assert.Equal(t, "Venue The Musical Hop Annex edited successfully", f.Message)
    assert.Equal(t, "The Musical Hop Annex", env.db.venues[1].Name)
    assert.Equal(t, []string{"Jazz", "Reggae"}, env.db.venues[1].Genres)
    assert.Equal(t, []string{queue.VenueUpdated}, env.pub.kinds())
}

func TestEditVenueMissingFieldLeavesRecordUnchanged(t *testing.T) {
    env := newTestEnv(t)
    env.seedVenue(t, "The Musical Hop", "San Francisco", "CA")
    form := venueValues("")

    rec := env.call(http.MethodPost, "/venues/1/edit", form, env.h.EditVenue, "id", "1")

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "Venue was not edited successfully.")
    assert.Equal(t, "The Musical Hop", env.db.venues[1].Name)
    assert.Equal(t, []string{"Jazz"}, env.db.venues[1].Genres)
}

func TestEditVenueNotFound(t *testing.T) {
    env := newTestEnv(t)

    rec := env.call(http.MethodPost, "/venues/4/edit", venueValues("x"), env.h.EditVenue, "id", "4")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteVenueCascades(t *testing.T) {
    env := newTestEnv(t)
    hop := env.seedVenue(t, "The Musical Hop", "San Francisco", "CA")
    bar := env.seedVenue(t, "The Dueling Pianos Bar", "New York", "NY")
    a := env.seedArtist(t, "Guns N Petals")
    env.seedShow(t, a.ID, hop.ID, testNow.Add(time.Hour))
    env.seedShow(t, a.ID, hop.ID, testNow.Add(-time.Hour))
    keep := env.seedShow(t, a.ID, bar.ID, testNow.Add(time.Hour))

    rec := env.call(http.MethodDelete, "/venues/1", nil, env.h.DeleteVenue, "id", "1")

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"success": true}`, rec.Body.String())
    assert.NotContains(t, env.db.venues, hop.ID)
    require.Len(t, env.db.shows, 1)
    assert.Contains(t, env.db.shows, keep.ID)
    f, ok := flash(t, rec)
    require.True(t, ok)
    assert.Equal(t, utils.FlashSuccess, f.Category)
    assert.Equal(t, []string{queue.VenueDeleted}, env.pub.kinds())
}

func TestDeleteVenueMissing(t *testing.T) {
    env := newTestEnv(t)

    rec := env.call(http.MethodDelete, "/venues/7", nil, env.h.DeleteVenue, "id", "7")

    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.JSONEq(t, `{"success": false, "error": "venue not found"}`, rec.Body.String())
}

func TestDeleteVenueFailure(t *testing.T) {
    env := newTestEnv(t)
    env.seedVenue(t, "The Musical Hop", "San Francisco", "CA")
    env.db.failErr = errors.New("lock wait timeout")

    rec := env.call(http.MethodDelete, "/venues/1", nil, env.h.DeleteVenue, "id", "1")

    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.NotContains(t, rec.Body.String(), "lock wait")
    assert.Contains(t, env.db.venues, uint64(1))
}
