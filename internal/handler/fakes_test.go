package handler

import (
    "context"
    "io"
    "net/http/httptest"
    "net/url"
    "sort"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/fyyur/internal/clock"
    "github.com/iliyamo/fyyur/internal/model"
    "github.com/iliyamo/fyyur/internal/queue"
    "github.com/iliyamo/fyyur/internal/repository"
    "github.com/iliyamo/fyyur/internal/utils"
    "github.com/iliyamo/fyyur/internal/view"
)

const testSecret = "test-secret"

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeDB keeps venues, artists and shows in memory with the same
// cascade and reference rules as the SQL repositories.
type fakeDB struct {
    mu      sync.Mutex
    venues  map[uint64]*model.Venue
    artists map[uint64]*model.Artist
    shows   map[uint64]*model.Show
    nextID  uint64
    failErr error // returned by every mutation when set
}

func newFakeDB() *fakeDB {
    return &fakeDB{
        venues:  map[uint64]*model.Venue{},
        artists: map[uint64]*model.Artist{},
        shows:   map[uint64]*model.Show{},
    }
}

func (db *fakeDB) id() uint64 { db.nextID++; return db.nextID }

func (db *fakeDB) upcoming(match func(*model.Show) bool, now time.Time) int {
    n := 0
    for _, s := range db.shows {
        if match(s) && s.StartTime.After(now) {
            n++
        }
    }
    return n
}

func (db *fakeDB) listing(s *model.Show) model.ShowListing {
    a, v := db.artists[s.ArtistID], db.venues[s.VenueID]
    return model.ShowListing{
        ID: s.ID, ArtistID: a.ID, ArtistName: a.Name, ArtistImageLink: a.ImageLink,
        VenueID: v.ID, VenueName: v.Name, VenueImageLink: v.ImageLink, StartTime: s.StartTime,
    }
}

func (db *fakeDB) listings(match func(*model.Show) bool) []model.ShowListing {
    out := make([]model.ShowListing, 0)
    for _, s := range db.shows {
        if match(s) {
            out = append(out, db.listing(s))
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
    return out
}

type fakeVenues struct{ *fakeDB }

func (f fakeVenues) Create(_ context.Context, v *model.Venue) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failErr != nil {
        return f.failErr
    }
    v.ID = f.id()
    cp := *v
    f.venues[v.ID] = &cp
    return nil
}

func (f fakeVenues) GetByID(_ context.Context, id uint64) (*model.Venue, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    v, ok := f.venues[id]
    if !ok {
        return nil, repository.ErrVenueNotFound
    }
    cp := *v
    return &cp, nil
}

func (f fakeVenues) summaries(match func(*model.Venue) bool, now time.Time) []model.VenueSummary {
    out := make([]model.VenueSummary, 0)
    for _, v := range f.venues {
        if !match(v) {
            continue
        }
        id := v.ID
        out = append(out, model.VenueSummary{
            ID: v.ID, Name: v.Name, City: v.City, State: v.State,
            UpcomingShows: f.upcoming(func(s *model.Show) bool { return s.VenueID == id }, now),
        })
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].State != out[j].State {
            return out[i].State < out[j].State
        }
        if out[i].City != out[j].City {
            return out[i].City < out[j].City
        }
        return out[i].ID < out[j].ID
    })
    return out
}

func (f fakeVenues) ListSummaries(_ context.Context, now time.Time) ([]model.VenueSummary, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.summaries(func(*model.Venue) bool { return true }, now), nil
}

func (f fakeVenues) Search(_ context.Context, term string, now time.Time) ([]model.VenueSummary, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    term = strings.ToLower(strings.TrimSpace(term))
    return f.summaries(func(v *model.Venue) bool { return strings.Contains(strings.ToLower(v.Name), term) }, now), nil
}

func (f fakeVenues) Recent(_ context.Context, limit int) ([]model.VenueSummary, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    all := f.summaries(func(*model.Venue) bool { return true }, testNow)
    sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
    if len(all) > limit {
        all = all[:limit]
    }
    return all, nil
}

func (f fakeVenues) Update(_ context.Context, v *model.Venue) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failErr != nil {
        return f.failErr
    }
    if _, ok := f.venues[v.ID]; !ok {
        return repository.ErrVenueNotFound
    }
    cp := *v
    f.venues[v.ID] = &cp
    return nil
}

func (f fakeVenues) DeleteCascade(_ context.Context, id uint64) (repository.DeleteResult, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failErr != nil {
        return repository.DeleteResult{}, f.failErr
    }
    v, ok := f.venues[id]
    if !ok {
        return repository.DeleteResult{}, repository.ErrVenueNotFound
    }
    res := repository.DeleteResult{Name: v.Name}
    for sid, s := range f.shows {
        if s.VenueID == id {
            delete(f.shows, sid)
            res.ShowsDeleted++
        }
    }
    delete(f.venues, id)
    return res, nil
}

type fakeArtists struct{ *fakeDB }

func (f fakeArtists) Create(_ context.Context, a *model.Artist) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failErr != nil {
        return f.failErr
    }
    a.ID = f.id()
    cp := *a
    f.artists[a.ID] = &cp
    return nil
}

func (f fakeArtists) GetByID(_ context.Context, id uint64) (*model.Artist, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    a, ok := f.artists[id]
    if !ok {
        return nil, repository.ErrArtistNotFound
    }
    cp := *a
    return &cp, nil
}

func (f fakeArtists) summaries(match func(*model.Artist) bool, now time.Time) []model.ArtistSummary {
    out := make([]model.ArtistSummary, 0)
    for _, a := range f.artists {
        if !match(a) {
            continue
        }
        id := a.ID
        out = append(out, model.ArtistSummary{
            ID: a.ID, Name: a.Name,
            UpcomingShows: f.upcoming(func(s *model.Show) bool { return s.ArtistID == id }, now),
        })
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out
}

func (f fakeArtists) ListAll(_ context.Context) ([]model.ArtistSummary, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.summaries(func(*model.Artist) bool { return true }, testNow), nil
}

func (f fakeArtists) Search(_ context.Context, term string, now time.Time) ([]model.ArtistSummary, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    term = strings.ToLower(strings.TrimSpace(term))
    return f.summaries(func(a *model.Artist) bool { return strings.Contains(strings.ToLower(a.Name), term) }, now), nil
}

func (f fakeArtists) Recent(_ context.Context, limit int) ([]model.ArtistSummary, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    all := f.summaries(func(*model.Artist) bool { return true }, testNow)
    sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
    if len(all) > limit {
        all = all[:limit]
    }
    return all, nil
}

func (f fakeArtists) Update(_ context.Context, a *model.Artist) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failErr != nil {
        return f.failErr
    }
    if _, ok := f.artists[a.ID]; !ok {
        return repository.ErrArtistNotFound
    }
    cp := *a
    f.artists[a.ID] = &cp
    return nil
}

func (f fakeArtists) DeleteCascade(_ context.Context, id uint64) (repository.DeleteResult, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failErr != nil {
        return repository.DeleteResult{}, f.failErr
    }
    a, ok := f.artists[id]
    if !ok {
        return repository.DeleteResult{}, repository.ErrArtistNotFound
    }
    res := repository.DeleteResult{Name: a.Name}
    for sid, s := range f.shows {
        if s.ArtistID == id {
            delete(f.shows, sid)
            res.ShowsDeleted++
        }
    }
    delete(f.artists, id)
    return res, nil
}

type fakeShows struct{ *fakeDB }

func (f fakeShows) Create(_ context.Context, s *model.Show) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.failErr != nil {
        return f.failErr
    }
    if _, ok := f.artists[s.ArtistID]; !ok {
        return repository.ErrInvalidReference
    }
    if _, ok := f.venues[s.VenueID]; !ok {
        return repository.ErrInvalidReference
    }
    s.ID = f.id()
    cp := *s
    f.shows[s.ID] = &cp
    return nil
}

func (f fakeShows) ListAll(_ context.Context) ([]model.ShowListing, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.listings(func(*model.Show) bool { return true }), nil
}

func (f fakeShows) ListForVenue(_ context.Context, id uint64) ([]model.ShowListing, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.listings(func(s *model.Show) bool { return s.VenueID == id }), nil
}

func (f fakeShows) ListForArtist(_ context.Context, id uint64) ([]model.ShowListing, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.listings(func(s *model.Show) bool { return s.ArtistID == id }), nil
}

type fakePublisher struct {
    mu     sync.Mutex
    events []queue.ActivityEvent
}

func (p *fakePublisher) Publish(_ context.Context, ev queue.ActivityEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
    return nil
}

func (p *fakePublisher) kinds() []string {
    p.mu.Lock()
    defer p.mu.Unlock()
    out := make([]string, 0, len(p.events))
    for _, ev := range p.events {
        out = append(out, ev.Kind)
    }
    return out
}

// testEnv wires a Handler over the fakes and an echo instance with the
// real renderer, validator and error handler.
type testEnv struct {
    e   *echo.Echo
    h   *Handler
    db  *fakeDB
    pub *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
    t.Helper()
    db := newFakeDB()
    pub := &fakePublisher{}
    log := logrus.New()
    log.SetOutput(io.Discard)

    h := New(fakeVenues{db}, fakeArtists{db}, fakeShows{db}, pub, clock.NewFixed(testNow), log, testSecret)
    r, err := view.New()
    require.NoError(t, err)

    e := echo.New()
    e.Renderer = r
    e.Validator = NewValidator()
    e.HTTPErrorHandler = h.HTTPErrorHandler
    return &testEnv{e: e, h: h, db: db, pub: pub}
}

// call runs fn against a synthetic request.  params are name/value pairs
// for path parameters.
func (env *testEnv) call(method, target string, form url.Values, fn echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
    var body io.Reader
    if form != nil {
        body = strings.NewReader(form.Encode())
    }
    req := httptest.NewRequest(method, target, body)
    if form != nil {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
    }
    rec := httptest.NewRecorder()
    c := env.e.NewContext(req, rec)
    var names, values []string
    for i := 0; i+1 < len(params); i += 2 {
        names = append(names, params[i])
        values = append(values, params[i+1])
    }
    if len(names) > 0 {
        c.SetParamNames(names...)
        c.SetParamValues(values...)
    }
    if err := fn(c); err != nil {
        env.e.HTTPErrorHandler(err, c)
    }
    return rec
}

// flash decodes the notice set on rec, if any.
func flash(t *testing.T, rec *httptest.ResponseRecorder) (utils.Flash, bool) {
    t.Helper()
    for _, ck := range rec.Result().Cookies() {
        if ck.Name == utils.FlashCookie && ck.Value != "" {
            f, err := utils.ParseFlash(testSecret, ck.Value, testNow)
            require.NoError(t, err)
            return f, true
        }
    }
    return utils.Flash{}, false
}

func venueValues(name string) url.Values {
    return url.Values{
        "name":           {name},
        "city":           {"San Francisco"},
        "state":          {"CA"},
        "address":        {"1015 Folsom Street"},
        "phone":          {"123-123-1234"},
        "genres":         {"Jazz", "Reggae"},
        "facebook_link":  {"https://www.facebook.com/TheMusicalHop"},
        "seeking_talent": {"y"},
    }
}

func artistValues(name string) url.Values {
    return url.Values{
        "name":          {name},
        "city":          {"San Francisco"},
        "state":         {"CA"},
        "phone":         {"326-123-5000"},
        "genres":        {"Rock n Roll"},
        "seeking_venue": {"y"},
    }
}
