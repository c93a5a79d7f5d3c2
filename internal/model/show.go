package model

import "time"

// Show links one artist to one venue at a start time.  It has no
// meaning on its own beyond that link.
//
// Fields:
//  ID        – primary key identifier.
//  ArtistID  – artist performing (artists.id, required).
//  VenueID   – venue hosting the show (venues.id, required).
//  StartTime – when the show begins.
type Show struct {
    ID        uint64    // shows.id
    ArtistID  uint64    // shows.artist_id
    VenueID   uint64    // shows.venue_id
    StartTime time.Time // shows.start_time
}

// ShowListing is a show joined with the names and pictures of its
// artist and venue, as needed by the show list and the detail pages.
type ShowListing struct {
    ID              uint64    `json:"id"`
    ArtistID        uint64    `json:"artist_id"`
    ArtistName      string    `json:"artist_name"`
    ArtistImageLink string    `json:"artist_image_link"`
    VenueID         uint64    `json:"venue_id"`
    VenueName       string    `json:"venue_name"`
    VenueImageLink  string    `json:"venue_image_link"`
    StartTime       time.Time `json:"start_time"`
}

// IsUpcoming reports whether the show starts strictly after now.
func (s ShowListing) IsUpcoming(now time.Time) bool {
    return s.StartTime.After(now)
}

// PartitionShows splits shows into past and upcoming relative to now.
// A show starting exactly at now is past.  Input order is preserved in
// both slices.
func PartitionShows(shows []ShowListing, now time.Time) (past, upcoming []ShowListing) {
    past = make([]ShowListing, 0)
    upcoming = make([]ShowListing, 0)
    for _, s := range shows {
        if s.IsUpcoming(now) {
            upcoming = append(upcoming, s)
        } else {
            past = append(past, s)
        }
    }
    return past, upcoming
}
