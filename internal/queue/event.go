// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// ActivityQueue is the durable queue activity events are published to.
const ActivityQueue = "fyyur.activity"

// Activity kinds published after a successful commit.
const (
    VenueCreated  = "venue.created"
    VenueUpdated  = "venue.updated"
    VenueDeleted  = "venue.deleted"
    ArtistCreated = "artist.created"
    ArtistUpdated = "artist.updated"
    ArtistDeleted = "artist.deleted"
    ShowCreated   = "show.created"
)

// ActivityEvent describes one committed change to the directory.  It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type ActivityEvent struct {
    ID         string    `json:"id"`          // unique event id (uuid)
    Kind       string    `json:"kind"`        // one of the kinds above
    EntityID   uint64    `json:"entity_id"`   // venue, artist or show id
    Name       string    `json:"name"`        // display name; empty for shows
    ArtistID   uint64    `json:"artist_id,omitempty"`
    VenueID    uint64    `json:"venue_id,omitempty"`
    OccurredAt time.Time `json:"occurred_at"`
}

// NewActivityEvent stamps an event with a fresh id.
func NewActivityEvent(kind string, entityID uint64, name string, at time.Time) ActivityEvent {
    return ActivityEvent{
        ID:         uuid.NewString(),
        Kind:       kind,
        EntityID:   entityID,
        Name:       name,
        OccurredAt: at.UTC(),
    }
}
