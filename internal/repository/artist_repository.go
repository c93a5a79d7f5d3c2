package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/fyyur/internal/model"
)

// ErrArtistNotFound is returned when an artist cannot be found in the DB.
var ErrArtistNotFound = errors.New("artist not found")

const artistColumns = `id, name, city, state, phone, genres, image_link, facebook_link,
	website_link, seeking_venue, seeking_description, created_at`

// ArtistRepo manages persistence for artists.
type ArtistRepo struct {
	db *sql.DB
}

// NewArtistRepo returns a new ArtistRepo.
func NewArtistRepo(db *sql.DB) *ArtistRepo { return &ArtistRepo{db: db} }

// Create inserts a new artist and populates its ID.
func (r *ArtistRepo) Create(ctx context.Context, a *model.Artist) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO artists (name, city, state, phone, genres, image_link, facebook_link,
	           website_link, seeking_venue, seeking_description, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			a.Name, a.City, a.State, a.Phone, model.JoinGenres(a.Genres), a.ImageLink, a.FacebookLink,
			a.WebsiteLink, a.SeekingVenue, a.SeekingDescription, a.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert artist: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		a.ID = uint64(id)
		return nil
	})
}

// GetByID fetches an artist by its ID.  It returns ErrArtistNotFound if no
// row is found.
func (r *ArtistRepo) GetByID(ctx context.Context, id uint64) (*model.Artist, error) {
	q := "SELECT " + artistColumns + " FROM artists WHERE id = ?"
	a, err := scanArtist(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArtistNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListAll returns every artist as a summary ordered by ID.  Upcoming show
// counts are not computed for the plain list.
func (r *ArtistRepo) ListAll(ctx context.Context) ([]model.ArtistSummary, error) {
	return r.querySummaries(ctx, `SELECT id, name, 0 FROM artists ORDER BY id`)
}

// Search returns artists whose name contains term, ignoring case, each
// with its number of shows starting strictly after now.
func (r *ArtistRepo) Search(ctx context.Context, term string, now time.Time) ([]model.ArtistSummary, error) {
	const q = `SELECT a.id, a.name, COUNT(s.id)
	           FROM artists a
	           LEFT JOIN shows s ON s.artist_id = a.id AND s.start_time > ?
	           WHERE LOWER(a.name) LIKE ?
	           GROUP BY a.id, a.name
	           ORDER BY a.name, a.id`
	return r.querySummaries(ctx, q, now, likePattern(term))
}

// Recent returns the most recently created artists, newest first.
func (r *ArtistRepo) Recent(ctx context.Context, limit int) ([]model.ArtistSummary, error) {
	return r.querySummaries(ctx, `SELECT id, name, 0 FROM artists ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

func (r *ArtistRepo) querySummaries(ctx context.Context, q string, args ...any) ([]model.ArtistSummary, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ArtistSummary, 0)
	for rows.Next() {
		var s model.ArtistSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.UpcomingShows); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update overwrites every editable field of the artist identified by
// a.ID.  It returns ErrArtistNotFound when no such artist exists.
func (r *ArtistRepo) Update(ctx context.Context, a *model.Artist) error {
	const q = `UPDATE artists
	           SET name = ?, city = ?, state = ?, phone = ?, genres = ?, image_link = ?,
	               facebook_link = ?, website_link = ?, seeking_venue = ?, seeking_description = ?
	           WHERE id = ?`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			a.Name, a.City, a.State, a.Phone, model.JoinGenres(a.Genres), a.ImageLink,
			a.FacebookLink, a.WebsiteLink, a.SeekingVenue, a.SeekingDescription, a.ID,
		)
		if err != nil {
			return fmt.Errorf("update artist %d: %w", a.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrArtistNotFound
		}
		return nil
	})
}

// DeleteCascade removes an artist together with all of its shows.
func (r *ArtistRepo) DeleteCascade(ctx context.Context, id uint64) (DeleteResult, error) {
	var out DeleteResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT name FROM artists WHERE id = ? FOR UPDATE`, id).Scan(&out.Name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrArtistNotFound
			}
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE artist_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete shows of artist %d: %w", id, err)
		}
		out.ShowsDeleted, _ = res.RowsAffected()
		if _, err := tx.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete artist %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return out, nil
}

func scanArtist(row rowScanner) (*model.Artist, error) {
	var (
		a      model.Artist
		genres string
	)
	if err := row.Scan(
		&a.ID, &a.Name, &a.City, &a.State, &a.Phone, &genres, &a.ImageLink, &a.FacebookLink,
		&a.WebsiteLink, &a.SeekingVenue, &a.SeekingDescription, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.Genres = model.SplitGenres(genres)
	return &a, nil
}
