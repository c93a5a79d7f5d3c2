package model

import "time"

// Artist represents a performer who can be booked for shows.  Like a
// venue, an artist owns its shows and genres are stored comma-joined in
// `artists.genres`.
type Artist struct {
    ID                 uint64    // artists.id
    Name               string    // artists.name
    City               string    // artists.city
    State              string    // artists.state
    Phone              string    // artists.phone
    Genres             []string  // artists.genres (comma-joined)
    ImageLink          string    // artists.image_link
    FacebookLink       string    // artists.facebook_link
    WebsiteLink        string    // artists.website_link
    SeekingVenue       bool      // artists.seeking_venue
    SeekingDescription string    // artists.seeking_description
    CreatedAt          time.Time // artists.created_at
}

// ArtistSummary is the short form of an artist used in listings and
// search results.
type ArtistSummary struct {
    ID            uint64 `json:"id"`
    Name          string `json:"name"`
    UpcomingShows int    `json:"num_upcoming_shows"`
}
