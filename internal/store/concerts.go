package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"concertlog/internal/concert"
)

const concertColumns = `id::text, band, to_char(date, 'YYYY-MM-DD'), city, event, artists, cost::float8, year`

// ListConcerts returns every concert, newest first.
func (s *Store) ListConcerts(ctx context.Context) ([]concert.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+concertColumns+`
		FROM concerts
		ORDER BY date DESC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select concerts: %w", err)
	}
	defer rows.Close()

	records := []concert.Record{}
	for rows.Next() {
		r, err := scanConcert(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate concerts: %w", err)
	}
	return records, nil
}

// GetConcert loads one concert by ID.
func (s *Store) GetConcert(ctx context.Context, id string) (concert.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+concertColumns+`
		FROM concerts
		WHERE id::text = $1
	`, id)
	r, err := scanConcert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return concert.Record{}, ErrConcertNotFound
	}
	return r, err
}

// CountConcerts returns the number of stored concerts.
func (s *Store) CountConcerts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM concerts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count concerts: %w", err)
	}
	return n, nil
}

// CreateConcert inserts r under a new ID and returns the stored record.
func (s *Store) CreateConcert(ctx context.Context, r concert.Record) (concert.Record, error) {
	r.ID = s.newID()
	if _, err := s.db.ExecContext(ctx, insertConcert, concertArgs(r)...); err != nil {
		return concert.Record{}, fmt.Errorf("insert concert: %w", err)
	}
	return r, nil
}

// CreateConcerts inserts records in a single transaction. Either all rows
// are stored or none are.
func (s *Store) CreateConcerts(ctx context.Context, records []concert.Record) ([]concert.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	stored := make([]concert.Record, 0, len(records))
	for _, r := range records {
		r.ID = s.newID()
		if _, err := tx.ExecContext(ctx, insertConcert, concertArgs(r)...); err != nil {
			return nil, fmt.Errorf("insert concert %q: %w", r.Band, err)
		}
		stored = append(stored, r)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return stored, nil
}

// UpdateConcert overwrites the stored fields of r.ID.
func (s *Store) UpdateConcert(ctx context.Context, r concert.Record) (concert.Record, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE concerts
		SET band = $2, date = $3::date, city = $4, event = $5,
		    artists = $6, cost = $7, year = $8, updated_at = NOW()
		WHERE id::text = $1
	`, concertArgs(r)...)
	if err != nil {
		return concert.Record{}, fmt.Errorf("update concert: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return concert.Record{}, err
	}
	return r, nil
}

// DeleteConcert removes a concert.
func (s *Store) DeleteConcert(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM concerts WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("delete concert: %w", err)
	}
	return expectOneRow(res)
}

const insertConcert = `
	INSERT INTO concerts (id, band, date, city, event, artists, cost, year)
	VALUES ($1::uuid, $2, $3::date, $4, $5, $6, $7, $8)
`

func concertArgs(r concert.Record) []any {
	return []any{r.ID, r.Band, r.Date, r.City, r.Event, r.Artists, r.Cost, r.Year}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConcert(row rowScanner) (concert.Record, error) {
	var r concert.Record
	if err := row.Scan(&r.ID, &r.Band, &r.Date, &r.City, &r.Event, &r.Artists, &r.Cost, &r.Year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return concert.Record{}, err
		}
		return concert.Record{}, fmt.Errorf("scan concert: %w", err)
	}
	return r, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrConcertNotFound
	}
	return nil
}
