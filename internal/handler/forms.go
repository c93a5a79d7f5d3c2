package handler

import (
    "errors"
    "fmt"
    "net/url"
    "reflect"
    "regexp"
    "strings"
    "time"

    "github.com/go-playground/validator/v10" // validator checks submitted forms against struct tags

    "github.com/iliyamo/fyyur/internal/model"
)

// VenueForm is the submitted venue form.  Tags name the form field and the
// rules it must satisfy.
type VenueForm struct {
    Name               string   `form:"name" validate:"required,max=120"`
    City               string   `form:"city" validate:"required,max=120"`
    State              string   `form:"state" validate:"required,state"`
    Address            string   `form:"address" validate:"required,max=120"`
    Phone              string   `form:"phone" validate:"omitempty,phone"`
    ImageLink          string   `form:"image_link" validate:"omitempty,url,max=500"`
    Genres             []string `form:"genres" validate:"min=1,dive,genre"`
    FacebookLink       string   `form:"facebook_link" validate:"omitempty,url,max=120"`
    WebsiteLink        string   `form:"website_link" validate:"omitempty,url,max=120"`
    SeekingTalent      bool     `form:"seeking_talent"`
    SeekingDescription string   `form:"seeking_description" validate:"max=500"`
}

// ArtistForm is the submitted artist form.
type ArtistForm struct {
    Name               string   `form:"name" validate:"required,max=120"`
    City               string   `form:"city" validate:"required,max=120"`
    State              string   `form:"state" validate:"required,state"`
    Phone              string   `form:"phone" validate:"omitempty,phone"`
    ImageLink          string   `form:"image_link" validate:"omitempty,url,max=500"`
    Genres             []string `form:"genres" validate:"min=1,dive,genre"`
    FacebookLink       string   `form:"facebook_link" validate:"omitempty,url,max=120"`
    WebsiteLink        string   `form:"website_link" validate:"omitempty,url,max=120"`
    SeekingVenue       bool     `form:"seeking_venue"`
    SeekingDescription string   `form:"seeking_description" validate:"max=500"`
}

// ShowForm is the submitted show form.  Values stay strings so that the
// form can be re-rendered exactly as typed.
type ShowForm struct {
    ArtistID  string `form:"artist_id" validate:"required,number"`
    VenueID   string `form:"venue_id" validate:"required,number"`
    StartTime string `form:"start_time" validate:"required,starttime"`
}

// StartTimeLayouts are the accepted show start time formats.  Values
// without a zone are read as UTC.
var StartTimeLayouts = []string{
    "2006-01-02 15:04:05",
    "2006-01-02T15:04",
    "2006-01-02 15:04",
    time.RFC3339,
}

// ParseStartTime parses a show start time in any of StartTimeLayouts.
func ParseStartTime(s string) (time.Time, error) {
    s = strings.TrimSpace(s)
    for _, l := range StartTimeLayouts {
        if t, err := time.Parse(l, s); err == nil {
            return t.UTC(), nil
        }
    }
    return time.Time{}, fmt.Errorf("invalid start time %q", s)
}

var phonePattern = regexp.MustCompile(`^[0-9+()\-. ]{7,20}$`)

// FormValidator adapts validator.Validate to echo.Validator.
type FormValidator struct {
    v *validator.Validate
}

// NewValidator builds the validator with the choice-list and start time
// rules registered.  Field errors are reported under their form names.
func NewValidator() *FormValidator {
    v := validator.New()
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    rules := map[string]validator.Func{
        "genre": func(fl validator.FieldLevel) bool { return model.IsGenre(fl.Field().String()) },
        "state": func(fl validator.FieldLevel) bool { return model.IsState(fl.Field().String()) },
        "phone": func(fl validator.FieldLevel) bool { return phonePattern.MatchString(fl.Field().String()) },
        "starttime": func(fl validator.FieldLevel) bool {
            _, err := ParseStartTime(fl.Field().String())
            return err == nil
        },
    }
    for tag, fn := range rules {
        if err := v.RegisterValidation(tag, fn); err != nil {
            panic(err)
        }
    }
    return &FormValidator{v: v}
}

// Validate implements echo.Validator.
func (fv *FormValidator) Validate(i any) error {
    return fv.v.Struct(i)
}

// fieldErrors flattens a validation error into form field -> message.
// Errors that are not validation errors are reported under "form".
func fieldErrors(err error) map[string]string {
    out := make(map[string]string)
    if err == nil {
        return out
    }
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) {
        out["form"] = err.Error()
        return out
    }
    for _, fe := range verrs {
        field := fe.Field()
        if i := strings.IndexByte(field, '['); i >= 0 {
            field = field[:i] // genres[2] -> genres
        }
        if _, seen := out[field]; seen {
            continue
        }
        out[field] = fieldMessage(fe)
    }
    return out
}

func fieldMessage(fe validator.FieldError) string {
    switch fe.Tag() {
    case "required":
        return "This field is required."
    case "min":
        return "Select at least one."
    case "max":
        return fmt.Sprintf("Must be at most %s characters.", fe.Param())
    case "url":
        return "Invalid URL."
    case "genre", "state":
        return "Not a valid choice."
    case "phone":
        return "Invalid phone number."
    case "number":
        return "Must be a number."
    case "starttime":
        return "Not a valid datetime value."
    default:
        return "Invalid value."
    }
}

// checked reads an HTML checkbox.  Browsers send "y" or "on" when ticked
// and nothing otherwise.
func checked(values url.Values, key string) bool {
    switch strings.ToLower(strings.TrimSpace(values.Get(key))) {
    case "y", "yes", "on", "true", "1":
        return true
    }
    return false
}

func field(values url.Values, key string) string {
    return strings.TrimSpace(values.Get(key))
}

func multi(values url.Values, key string) []string {
    out := make([]string, 0, len(values[key]))
    for _, v := range values[key] {
        if v = strings.TrimSpace(v); v != "" {
            out = append(out, v)
        }
    }
    return out
}

func venueFormFromValues(values url.Values) VenueForm {
    return VenueForm{
        Name:               field(values, "name"),
        City:               field(values, "city"),
        State:              field(values, "state"),
        Address:            field(values, "address"),
        Phone:              field(values, "phone"),
        ImageLink:          field(values, "image_link"),
        Genres:             multi(values, "genres"),
        FacebookLink:       field(values, "facebook_link"),
        WebsiteLink:        field(values, "website_link"),
        SeekingTalent:      checked(values, "seeking_talent"),
        SeekingDescription: field(values, "seeking_description"),
    }
}

func venueFormFromModel(v *model.Venue) VenueForm {
    return VenueForm{
        Name: v.Name, City: v.City, State: v.State, Address: v.Address, Phone: v.Phone,
        ImageLink: v.ImageLink, Genres: v.Genres, FacebookLink: v.FacebookLink,
        WebsiteLink: v.WebsiteLink, SeekingTalent: v.SeekingTalent,
        SeekingDescription: v.SeekingDescription,
    }
}

// apply copies every form field onto v.  ID and CreatedAt are untouched.
func (f VenueForm) apply(v *model.Venue) {
    v.Name = f.Name
    v.City = f.City
    v.State = f.State
    v.Address = f.Address
    v.Phone = f.Phone
    v.ImageLink = f.ImageLink
    v.Genres = f.Genres
    v.FacebookLink = f.FacebookLink
    v.WebsiteLink = f.WebsiteLink
    v.SeekingTalent = f.SeekingTalent
    v.SeekingDescription = f.SeekingDescription
}

func artistFormFromValues(values url.Values) ArtistForm {
    return ArtistForm{
        Name:               field(values, "name"),
        City:               field(values, "city"),
        State:              field(values, "state"),
        Phone:              field(values, "phone"),
        ImageLink:          field(values, "image_link"),
        Genres:             multi(values, "genres"),
        FacebookLink:       field(values, "facebook_link"),
        WebsiteLink:        field(values, "website_link"),
        SeekingVenue:       checked(values, "seeking_venue"),
        SeekingDescription: field(values, "seeking_description"),
    }
}

func artistFormFromModel(a *model.Artist) ArtistForm {
    return ArtistForm{
        Name: a.Name, City: a.City, State: a.State, Phone: a.Phone, ImageLink: a.ImageLink,
        Genres: a.Genres, FacebookLink: a.FacebookLink, WebsiteLink: a.WebsiteLink,
        SeekingVenue: a.SeekingVenue, SeekingDescription: a.SeekingDescription,
    }
}

func (f ArtistForm) apply(a *model.Artist) {
    a.Name = f.Name
    a.City = f.City
    a.State = f.State
    a.Phone = f.Phone
    a.ImageLink = f.ImageLink
    a.Genres = f.Genres
    a.FacebookLink = f.FacebookLink
    a.WebsiteLink = f.WebsiteLink
    a.SeekingVenue = f.SeekingVenue
    a.SeekingDescription = f.SeekingDescription
}

func showFormFromValues(values url.Values) ShowForm {
    return ShowForm{
        ArtistID:  field(values, "artist_id"),
        VenueID:   field(values, "venue_id"),
        StartTime: field(values, "start_time"),
    }
}
