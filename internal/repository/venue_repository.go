package repository

import (
	"context"      // context carries request deadlines into every query
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to define sentinel values
	"fmt"
	"time"

	"github.com/iliyamo/fyyur/internal/model"
)

// ErrVenueNotFound is returned when a venue cannot be found in the DB.
var ErrVenueNotFound = errors.New("venue not found")

const venueColumns = `id, name, city, state, address, phone, image_link, facebook_link,
	genres, website_link, seeking_talent, seeking_description, created_at`

// VenueRepo encapsulates all database queries related to venues.
type VenueRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewVenueRepo constructs a VenueRepo with the provided DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// DeleteResult describes what a cascading delete removed.
type DeleteResult struct {
	Name         string // name of the removed venue or artist
	ShowsDeleted int64  // number of shows removed with it
}

// Create inserts a new venue.  On success the venue's ID is populated with
// the generated value.  A zero CreatedAt is set to the current time.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO venues (name, city, state, address, phone, image_link, facebook_link,
	           genres, website_link, seeking_talent, seeking_description, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			v.Name, v.City, v.State, v.Address, v.Phone, v.ImageLink, v.FacebookLink,
			model.JoinGenres(v.Genres), v.WebsiteLink, v.SeekingTalent, v.SeekingDescription, v.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert venue: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		v.ID = uint64(id)
		return nil
	})
}

// GetByID fetches a venue by its ID.  It returns ErrVenueNotFound if no
// row is found.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	q := "SELECT " + venueColumns + " FROM venues WHERE id = ?"
	v, err := scanVenue(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return v, nil
}

// ListSummaries returns every venue ordered by state, city and name,
// each with the number of its shows starting strictly after now.
func (r *VenueRepo) ListSummaries(ctx context.Context, now time.Time) ([]model.VenueSummary, error) {
	const q = `SELECT v.id, v.name, v.city, v.state, COUNT(s.id)
	           FROM venues v
	           LEFT JOIN shows s ON s.venue_id = v.id AND s.start_time > ?
	           GROUP BY v.id, v.name, v.city, v.state
	           ORDER BY v.state, v.city, v.name, v.id`
	return r.querySummaries(ctx, q, now)
}

// Search returns venues whose name contains term, ignoring case, each with
// its upcoming show count relative to now.
func (r *VenueRepo) Search(ctx context.Context, term string, now time.Time) ([]model.VenueSummary, error) {
	const q = `SELECT v.id, v.name, v.city, v.state, COUNT(s.id)
	           FROM venues v
	           LEFT JOIN shows s ON s.venue_id = v.id AND s.start_time > ?
	           WHERE LOWER(v.name) LIKE ?
	           GROUP BY v.id, v.name, v.city, v.state
	           ORDER BY v.name, v.id`
	return r.querySummaries(ctx, q, now, likePattern(term))
}

func (r *VenueRepo) querySummaries(ctx context.Context, q string, args ...any) ([]model.VenueSummary, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.VenueSummary, 0)
	for rows.Next() {
		var s model.VenueSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.State, &s.UpcomingShows); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Recent returns the most recently created venues, newest first.
func (r *VenueRepo) Recent(ctx context.Context, limit int) ([]model.VenueSummary, error) {
	const q = `SELECT id, name, city, state FROM venues ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.VenueSummary, 0, limit)
	for rows.Next() {
		var s model.VenueSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.State); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites every editable field of the venue identified by v.ID.
// It returns ErrVenueNotFound when no such venue exists.  CreatedAt is
// never changed.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	const q = `UPDATE venues
	           SET name = ?, city = ?, state = ?, address = ?, phone = ?, image_link = ?,
	               facebook_link = ?, genres = ?, website_link = ?, seeking_talent = ?,
	               seeking_description = ?
	           WHERE id = ?`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			v.Name, v.City, v.State, v.Address, v.Phone, v.ImageLink,
			v.FacebookLink, model.JoinGenres(v.Genres), v.WebsiteLink, v.SeekingTalent,
			v.SeekingDescription, v.ID,
		)
		if err != nil {
			return fmt.Errorf("update venue %d: %w", v.ID, err)
		}
		// The DSN sets clientFoundRows, so an unchanged row still counts.
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrVenueNotFound
		}
		return nil
	})
}

// DeleteCascade removes a venue and every show booked at it in a single
// transaction.  If the venue does not exist, ErrVenueNotFound is returned
// and nothing is deleted.
func (r *VenueRepo) DeleteCascade(ctx context.Context, id uint64) (DeleteResult, error) {
	var out DeleteResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		// Lock the venue row so no show can be booked against it mid-delete.
		if err := tx.QueryRowContext(ctx, `SELECT name FROM venues WHERE id = ? FOR UPDATE`, id).Scan(&out.Name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrVenueNotFound
			}
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE venue_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete shows of venue %d: %w", id, err)
		}
		out.ShowsDeleted, _ = res.RowsAffected()
		if _, err := tx.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete venue %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return out, nil
}

func scanVenue(row rowScanner) (*model.Venue, error) {
	var (
		v      model.Venue
		genres string
	)
	if err := row.Scan(
		&v.ID, &v.Name, &v.City, &v.State, &v.Address, &v.Phone, &v.ImageLink, &v.FacebookLink,
		&genres, &v.WebsiteLink, &v.SeekingTalent, &v.SeekingDescription, &v.CreatedAt,
	); err != nil {
		return nil, err
	}
	v.Genres = model.SplitGenres(genres)
	return &v, nil
}
