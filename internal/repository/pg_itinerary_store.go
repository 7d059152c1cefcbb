package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary"
)

// PgItineraryStore is an itinerary.Store backed by PostgreSQL. It is used
// when the orchestrator owns the lists database instead of calling the list
// service.
type PgItineraryStore struct {
	pool *pgxpool.Pool
}

// NewPgItineraryStore returns a Store backed by PostgreSQL.
func NewPgItineraryStore(pool *pgxpool.Pool) *PgItineraryStore {
	return &PgItineraryStore{pool: pool}
}

const entryColumns = `itinerary_id, list_id, business_id, day, times`

// CreateList inserts an empty list and returns its id.
func (s *PgItineraryStore) CreateList(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO lists (name) VALUES ($1) RETURNING list_id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert list: %w", err)
	}
	return id, nil
}

func (s *PgItineraryStore) ListEntries(ctx context.Context, listID int64, day domain.Day) ([]domain.ItineraryEntry, error) {
	if err := s.requireList(ctx, listID); err != nil {
		return nil, err
	}

	query := `SELECT ` + entryColumns + ` FROM itineraries WHERE list_id = $1`
	args := []any{listID}
	if day != "" {
		query += ` AND day = $2`
		args = append(args, day)
	}
	query += ` ORDER BY times, itinerary_id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	defer rows.Close()

	entries := []domain.ItineraryEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PgItineraryStore) CreateEntry(ctx context.Context, listID, businessID int64, day domain.Day, times string) (domain.ItineraryEntry, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO itineraries (list_id, business_id, day, times)
		VALUES ($1, $2, $3, $4)
		RETURNING `+entryColumns,
		listID, businessID, day, times,
	)
	e, err := scanEntry(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return domain.ItineraryEntry{}, fmt.Errorf("list %d: %w", listID, domain.ErrNotFound)
		}
		return domain.ItineraryEntry{}, fmt.Errorf("insert itinerary: %w", err)
	}
	return e, nil
}

func (s *PgItineraryStore) UpdateTimes(ctx context.Context, listID, itineraryID int64, times string) (domain.ItineraryEntry, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE itineraries SET times = $1, updated_at = NOW()
		WHERE itinerary_id = $2 AND list_id = $3
		RETURNING `+entryColumns,
		times, itineraryID, listID,
	)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ItineraryEntry{}, fmt.Errorf("itinerary %d: %w", itineraryID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.ItineraryEntry{}, fmt.Errorf("update itinerary times: %w", err)
	}
	return e, nil
}

// DeleteEntry removes the oldest entry for businessID on the list.
func (s *PgItineraryStore) DeleteEntry(ctx context.Context, listID, businessID int64) (*domain.ItineraryEntry, error) {
	row := s.pool.QueryRow(ctx, `
		DELETE FROM itineraries
		WHERE itinerary_id = (
			SELECT itinerary_id FROM itineraries
			WHERE list_id = $1 AND business_id = $2
			ORDER BY itinerary_id
			LIMIT 1
		)
		RETURNING `+entryColumns,
		listID, businessID,
	)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete itinerary: %w", err)
	}
	return &e, nil
}

func (s *PgItineraryStore) requireList(ctx context.Context, listID int64) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM lists WHERE list_id = $1)`, listID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check list: %w", err)
	}
	if !exists {
		return fmt.Errorf("list %d: %w", listID, domain.ErrNotFound)
	}
	return nil
}

// scanner abstracts pgx.Row and pgx.Rows so scanEntry works for both.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (domain.ItineraryEntry, error) {
	var e domain.ItineraryEntry
	var day string
	if err := s.Scan(&e.ItineraryID, &e.ListID, &e.BusinessID, &day, &e.Times); err != nil {
		return domain.ItineraryEntry{}, err
	}
	e.Day = domain.Day(day)
	return e, nil
}

var _ itinerary.Store = (*PgItineraryStore)(nil)
