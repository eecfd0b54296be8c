package offers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"maskchain/pkg/platform/sentinel"
)

// PostgresStore persists offer rows in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, offer *ProducerOffer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO producer_offers (id, producer_id, order_id) VALUES ($1, $2, $3)`,
		offer.ID, offer.ProducerID, offer.Order)
	if err != nil {
		return fmt.Errorf("create producer offer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*ProducerOffer, error) {
	var offer ProducerOffer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, producer_id, order_id FROM producer_offers WHERE id = $1`, id).
		Scan(&offer.ID, &offer.ProducerID, &offer.Order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find producer offer: %w", err)
	}
	return &offer, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*ProducerOffer, error) {
	query := `SELECT id, producer_id, order_id FROM producer_offers WHERE 1=1`
	var args []any
	if filter.ProducerID != 0 {
		args = append(args, filter.ProducerID)
		query += fmt.Sprintf(" AND producer_id = $%d", len(args))
	}
	if filter.Order != "" {
		args = append(args, filter.Order)
		query += fmt.Sprintf(" AND order_id = $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list producer offers: %w", err)
	}
	defer rows.Close()

	var out []*ProducerOffer
	for rows.Next() {
		var offer ProducerOffer
		if err := rows.Scan(&offer.ID, &offer.ProducerID, &offer.Order); err != nil {
			return nil, fmt.Errorf("scan producer offer: %w", err)
		}
		out = append(out, &offer)
	}
	return out, rows.Err()
}
