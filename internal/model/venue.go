package model

import "time"

// Venue represents a physical location that can host shows.  A venue
// owns its shows: removing the venue removes every show booked there.
// Genres are kept as a list in memory and stored comma-joined in the
// `venues.genres` column (see JoinGenres and SplitGenres).
//
// Fields:
//  ID                 – primary key identifier.
//  Name               – display name of the venue.
//  City, State        – location used to group venues in listings.
//  Address            – street address.
//  Phone              – contact phone number.
//  ImageLink          – URL of a picture of the venue.
//  FacebookLink       – URL of the venue's social profile.
//  Genres             – music genres the venue books.
//  WebsiteLink        – URL of the venue's website.
//  SeekingTalent      – whether the venue is looking for artists.
//  SeekingDescription – free text describing what the venue looks for.
//  CreatedAt          – insert timestamp.
type Venue struct {
    ID                 uint64    // venues.id
    Name               string    // venues.name
    City               string    // venues.city
    State              string    // venues.state
    Address            string    // venues.address
    Phone              string    // venues.phone
    ImageLink          string    // venues.image_link
    FacebookLink       string    // venues.facebook_link
    Genres             []string  // venues.genres (comma-joined)
    WebsiteLink        string    // venues.website_link
    SeekingTalent      bool      // venues.seeking_talent
    SeekingDescription string    // venues.seeking_description
    CreatedAt          time.Time // venues.created_at
}

// VenueSummary is the short form of a venue used in listings and search
// results.  UpcomingShows counts shows starting strictly after the
// moment the query was evaluated.
type VenueSummary struct {
    ID            uint64 `json:"id"`
    Name          string `json:"name"`
    City          string `json:"-"`
    State         string `json:"-"`
    UpcomingShows int    `json:"num_upcoming_shows"`
}

// Area groups venues sharing the same state and city.
type Area struct {
    State  string         `json:"state"`
    City   string         `json:"city"`
    Venues []VenueSummary `json:"venues"`
}

// GroupByArea groups venue summaries by (state, city), keeping the order
// in which each area is first seen.  Callers sort the input by state and
// city when they want alphabetical areas.
func GroupByArea(venues []VenueSummary) []Area {
    areas := make([]Area, 0)
    index := make(map[[2]string]int)
    for _, v := range venues {
        key := [2]string{v.State, v.City}
        i, ok := index[key]
        if !ok {
            areas = append(areas, Area{State: v.State, City: v.City})
            i = len(areas) - 1
            index[key] = i
        }
        areas[i].Venues = append(areas[i].Venues, v)
    }
    return areas
}
