package chain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"maskchain/pkg/platform/sentinel"
)

// PostgresProgressStore persists journal rows in PostgreSQL.
type PostgresProgressStore struct {
	db *sql.DB
}

func NewPostgresProgressStore(db *sql.DB) *PostgresProgressStore {
	return &PostgresProgressStore{db: db}
}

func (s *PostgresProgressStore) Find(ctx context.Context, paymentID int64) (*Progress, error) {
	var row Progress
	err := s.db.QueryRowContext(ctx,
		`SELECT payment_id, order_id, bank_id, letter_id, deal_id, delivery_id, step, updated_at
		 FROM chain_progress WHERE payment_id = $1`, paymentID).
		Scan(&row.PaymentID, &row.OrderID, &row.BankID, &row.LetterID, &row.DealID,
			&row.DeliveryID, &row.Step, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find chain progress: %w", err)
	}
	return &row, nil
}

func (s *PostgresProgressStore) Save(ctx context.Context, progress *Progress) error {
	progress.UpdatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chain_progress (payment_id, order_id, bank_id, letter_id, deal_id, delivery_id, step, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (payment_id) DO UPDATE SET
			letter_id = EXCLUDED.letter_id,
			deal_id = EXCLUDED.deal_id,
			delivery_id = EXCLUDED.delivery_id,
			step = EXCLUDED.step,
			updated_at = EXCLUDED.updated_at`,
		progress.PaymentID, progress.OrderID, progress.BankID, progress.LetterID,
		progress.DealID, progress.DeliveryID, progress.Step, progress.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save chain progress: %w", err)
	}
	return nil
}

func (s *PostgresProgressStore) ListUnresolved(ctx context.Context) ([]*Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payment_id, order_id, bank_id, letter_id, deal_id, delivery_id, step, updated_at
		 FROM chain_progress WHERE step <> $1 ORDER BY updated_at`, StepDone)
	if err != nil {
		return nil, fmt.Errorf("list unresolved chains: %w", err)
	}
	defer rows.Close()

	var out []*Progress
	for rows.Next() {
		var row Progress
		if err := rows.Scan(&row.PaymentID, &row.OrderID, &row.BankID, &row.LetterID,
			&row.DealID, &row.DeliveryID, &row.Step, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan chain progress: %w", err)
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}
