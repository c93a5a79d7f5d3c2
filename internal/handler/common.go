package handler // handler defines the http handlers of the booking site

import (
    "context"  // context bounds activity publishing
    "net/http" // http provides status codes and cookies
    "strconv"  // strconv parses path identifiers
    "time"

    "github.com/labstack/echo/v4"                     // echo defines request context types
    echomw "github.com/labstack/echo/v4/middleware" // csrf context key
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/fyyur/internal/clock"
    "github.com/iliyamo/fyyur/internal/middleware"
    "github.com/iliyamo/fyyur/internal/model"
    "github.com/iliyamo/fyyur/internal/queue"
    "github.com/iliyamo/fyyur/internal/repository"
    "github.com/iliyamo/fyyur/internal/service"
    "github.com/iliyamo/fyyur/internal/utils"
    "github.com/iliyamo/fyyur/internal/view"
)

// VenueStore is the venue persistence used by the handlers.
type VenueStore interface {
    Create(ctx context.Context, v *model.Venue) error
    GetByID(ctx context.Context, id uint64) (*model.Venue, error)
    ListSummaries(ctx context.Context, now time.Time) ([]model.VenueSummary, error)
    Search(ctx context.Context, term string, now time.Time) ([]model.VenueSummary, error)
    Recent(ctx context.Context, limit int) ([]model.VenueSummary, error)
    Update(ctx context.Context, v *model.Venue) error
    DeleteCascade(ctx context.Context, id uint64) (repository.DeleteResult, error)
}

// ArtistStore is the artist persistence used by the handlers.
type ArtistStore interface {
    Create(ctx context.Context, a *model.Artist) error
    GetByID(ctx context.Context, id uint64) (*model.Artist, error)
    ListAll(ctx context.Context) ([]model.ArtistSummary, error)
    Search(ctx context.Context, term string, now time.Time) ([]model.ArtistSummary, error)
    Recent(ctx context.Context, limit int) ([]model.ArtistSummary, error)
    Update(ctx context.Context, a *model.Artist) error
    DeleteCascade(ctx context.Context, id uint64) (repository.DeleteResult, error)
}

// ShowStore is the show persistence used by the handlers.
type ShowStore interface {
    Create(ctx context.Context, s *model.Show) error
    ListAll(ctx context.Context) ([]model.ShowListing, error)
    ListForVenue(ctx context.Context, venueID uint64) ([]model.ShowListing, error)
    ListForArtist(ctx context.Context, artistID uint64) ([]model.ShowListing, error)
}

// Handler bundles the stores and services every page handler needs.
type Handler struct {
    Venues  VenueStore         // Venues provides venue persistence
    Artists ArtistStore        // Artists provides artist persistence
    Shows   ShowStore          // Shows provides show persistence
    Events  service.Publisher  // Events receives activity events after commits
    Clock   clock.Clock        // Clock decides what "now" is for upcoming/past
    Log     logrus.FieldLogger // Log records persistence failures
    Secret  string             // Secret signs flash cookies
}

// New constructs a Handler and panics if any dependency is nil.
func New(venues VenueStore, artists ArtistStore, shows ShowStore, events service.Publisher, clk clock.Clock, log logrus.FieldLogger, secret string) *Handler {
    if venues == nil || artists == nil || shows == nil || events == nil || clk == nil || log == nil {
        panic("nil dependency passed to handler.New")
    }
    return &Handler{Venues: venues, Artists: artists, Shows: shows, Events: events, Clock: clk, Log: log, Secret: secret}
}

// recentLimit is how many venues and artists the home page lists.
const recentLimit = 10

const flashNowKey = "flash_now"

// FormPage is the view model of every form page.
type FormPage struct {
    ID     uint64            // record being edited; zero on create
    Form   any               // VenueForm, ArtistForm or ShowForm
    Errors map[string]string // form field -> message
}

// render wraps data into a view.Page carrying the CSRF token and the
// pending notice, then renders the named page.
func (h *Handler) render(c echo.Context, status int, page, title string, data any) error {
    p := view.Page{Title: title, Data: data}
    if tok, ok := c.Get(echomw.DefaultCSRFConfig.ContextKey).(string); ok {
        p.CSRFToken = tok
    }
    if f, ok := c.Get(flashNowKey).(utils.Flash); ok {
        p.Flash = &f
    } else if f, ok := h.takeFlash(c); ok {
        p.Flash = &f
    }
    return c.Render(status, page, p)
}

// flashNow shows a notice on the page rendered by this request.
func (h *Handler) flashNow(c echo.Context, category, msg string) {
    c.Set(flashNowKey, utils.Flash{Category: category, Message: msg})
}

// flashNext stores a notice for the next rendered page.
func (h *Handler) flashNext(c echo.Context, category, msg string) {
    cookie, err := utils.NewFlashCookie(h.Secret, utils.Flash{Category: category, Message: msg}, h.Clock.Now())
    if err != nil {
        h.Log.WithError(err).Warn("flash: sign cookie")
        return
    }
    c.SetCookie(cookie)
}

// takeFlash reads and clears the pending notice, if any.
func (h *Handler) takeFlash(c echo.Context) (utils.Flash, bool) {
    ck, err := c.Cookie(utils.FlashCookie)
    if err != nil || ck.Value == "" {
        return utils.Flash{}, false
    }
    c.SetCookie(utils.ClearFlashCookie())
    f, err := utils.ParseFlash(h.Secret, ck.Value, h.Clock.Now())
    if err != nil {
        return utils.Flash{}, false
    }
    return f, true
}

// redirect answers a form post with 303 See Other.
func redirect(c echo.Context, to string) error {
    return c.Redirect(http.StatusSeeOther, to)
}

// parseID reads the :id path parameter.  Anything but a positive integer
// is reported as not found, as no such record can exist.
func parseID(c echo.Context) (uint64, error) {
    id, err := strconvID(c)
    if err != nil {
        return 0, echo.NewHTTPError(http.StatusNotFound, "Not found")
    }
    return id, nil
}

func strconvID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err == nil && id == 0 {
        err = strconv.ErrRange
    }
    return id, err
}

// committed runs after a write has been committed: cached pages are
// dropped once the request completes and the activity event goes out.
func (h *Handler) committed(c echo.Context, ev queue.ActivityEvent) {
    middleware.MarkDataChanged(c)
    h.publish(c, ev)
}

// publish sends an activity event.  Failures are logged and never fail
// the request.
func (h *Handler) publish(c echo.Context, ev queue.ActivityEvent) {
    ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
    defer cancel()
    if err := h.Events.Publish(ctx, ev); err != nil {
        h.Log.WithError(err).WithField("kind", ev.Kind).Warn("activity event not published")
    }
}

// logFailure records a persistence failure with request context.
func (h *Handler) logFailure(c echo.Context, err error, msg string) {
    h.Log.WithError(err).WithFields(logrus.Fields{
        "method": c.Request().Method,
        "uri":    c.Request().RequestURI,
    }).Error(msg)
}
