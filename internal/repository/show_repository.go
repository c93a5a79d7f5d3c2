package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/fyyur/internal/model"
)

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo creates a new ShowRepo.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// Create books a show.  Both the artist and the venue must exist;
// otherwise ErrInvalidReference is returned and nothing is written.
// A zero StartTime defaults to the current time.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	if s.StartTime.IsZero() {
		s.StartTime = time.Now().UTC()
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		// Share-lock both parents so a concurrent cascade delete waits
		// for this insert to finish.
		for _, ref := range []struct {
			q  string
			id uint64
		}{
			{`SELECT id FROM artists WHERE id = ? LOCK IN SHARE MODE`, s.ArtistID},
			{`SELECT id FROM venues WHERE id = ? LOCK IN SHARE MODE`, s.VenueID},
		} {
			var id uint64
			if err := tx.QueryRowContext(ctx, ref.q, ref.id).Scan(&id); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrInvalidReference
				}
				return err
			}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO shows (artist_id, venue_id, start_time) VALUES (?, ?, ?)`,
			s.ArtistID, s.VenueID, s.StartTime)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrInvalidReference
			}
			return fmt.Errorf("insert show: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = uint64(id)
		return nil
	})
}

const showListingSelect = `SELECT s.id, a.id, a.name, a.image_link, v.id, v.name, v.image_link, s.start_time
	FROM shows s
	JOIN artists a ON a.id = s.artist_id
	JOIN venues v ON v.id = s.venue_id`

// ListAll returns every show with its artist and venue, ordered by start
// time.  The join is done in one query.
func (r *ShowRepo) ListAll(ctx context.Context) ([]model.ShowListing, error) {
	return r.queryListings(ctx, showListingSelect+` ORDER BY s.start_time, s.id`)
}

// ListForVenue returns the shows booked at a venue ordered by start time.
func (r *ShowRepo) ListForVenue(ctx context.Context, venueID uint64) ([]model.ShowListing, error) {
	return r.queryListings(ctx, showListingSelect+` WHERE s.venue_id = ? ORDER BY s.start_time, s.id`, venueID)
}

// ListForArtist returns the shows an artist plays ordered by start time.
func (r *ShowRepo) ListForArtist(ctx context.Context, artistID uint64) ([]model.ShowListing, error) {
	return r.queryListings(ctx, showListingSelect+` WHERE s.artist_id = ? ORDER BY s.start_time, s.id`, artistID)
}

func (r *ShowRepo) queryListings(ctx context.Context, q string, args ...any) ([]model.ShowListing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ShowListing, 0)
	for rows.Next() {
		var l model.ShowListing
		if err := rows.Scan(
			&l.ID,
			&l.ArtistID, &l.ArtistName, &l.ArtistImageLink,
			&l.VenueID, &l.VenueName, &l.VenueImageLink,
			&l.StartTime,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
