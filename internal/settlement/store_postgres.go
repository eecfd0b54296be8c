package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"maskchain/pkg/platform/sentinel"
)

// PostgresPaymentStore persists payment rows in PostgreSQL.
type PostgresPaymentStore struct {
	db *sql.DB
}

func NewPostgresPaymentStore(db *sql.DB) *PostgresPaymentStore {
	return &PostgresPaymentStore{db: db}
}

func (s *PostgresPaymentStore) Create(ctx context.Context, payment *Payment) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO payments (order_id, price, producer_id) VALUES ($1, $2, $3) RETURNING id`,
		payment.Order, payment.Price, payment.ProducerID).
		Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (s *PostgresPaymentStore) FindByID(ctx context.Context, id int64) (*Payment, error) {
	var payment Payment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, order_id, price, producer_id FROM payments WHERE id = $1`, id).
		Scan(&payment.ID, &payment.Order, &payment.Price, &payment.ProducerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &payment, nil
}

func (s *PostgresPaymentStore) List(ctx context.Context, filter PaymentFilter) ([]*Payment, error) {
	query := `SELECT id, order_id, price, producer_id FROM payments WHERE 1=1`
	var args []any
	if filter.Order != "" {
		args = append(args, filter.Order)
		query += fmt.Sprintf(" AND order_id = $%d", len(args))
	}
	if filter.ProducerID != 0 {
		args = append(args, filter.ProducerID)
		query += fmt.Sprintf(" AND producer_id = $%d", len(args))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		var payment Payment
		if err := rows.Scan(&payment.ID, &payment.Order, &payment.Price, &payment.ProducerID); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, &payment)
	}
	return out, rows.Err()
}

func (s *PostgresPaymentStore) PaymentOrderIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT order_id FROM payments`)
	if err != nil {
		return nil, fmt.Errorf("list payment order ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var order string
		if err := rows.Scan(&order); err != nil {
			return nil, fmt.Errorf("scan payment order id: %w", err)
		}
		out = append(out, order)
	}
	return out, rows.Err()
}

// PostgresLetterStore persists payment letter rows in PostgreSQL.
type PostgresLetterStore struct {
	db *sql.DB
}

func NewPostgresLetterStore(db *sql.DB) *PostgresLetterStore {
	return &PostgresLetterStore{db: db}
}

func (s *PostgresLetterStore) Create(ctx context.Context, letter *PaymentLetter) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_letters (id, bank_id, order_id) VALUES ($1, $2, $3)`,
		letter.ID, letter.BankID, letter.Order)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create payment letter: %w", err)
	}
	return nil
}

func (s *PostgresLetterStore) FindByID(ctx context.Context, id string) (*PaymentLetter, error) {
	var letter PaymentLetter
	err := s.db.QueryRowContext(ctx,
		`SELECT id, bank_id, order_id FROM payment_letters WHERE id = $1`, id).
		Scan(&letter.ID, &letter.BankID, &letter.Order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find payment letter: %w", err)
	}
	return &letter, nil
}

func (s *PostgresLetterStore) FindByOrder(ctx context.Context, order string) (*PaymentLetter, error) {
	var letter PaymentLetter
	err := s.db.QueryRowContext(ctx,
		`SELECT id, bank_id, order_id FROM payment_letters WHERE order_id = $1 ORDER BY created_at LIMIT 1`,
		order).
		Scan(&letter.ID, &letter.BankID, &letter.Order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find payment letter by order: %w", err)
	}
	return &letter, nil
}

func (s *PostgresLetterStore) List(ctx context.Context, filter LetterFilter) ([]*PaymentLetter, error) {
	query := `SELECT id, bank_id, order_id FROM payment_letters WHERE 1=1`
	var args []any
	if filter.BankID != 0 {
		args = append(args, filter.BankID)
		query += fmt.Sprintf(" AND bank_id = $%d", len(args))
	}
	if filter.Orders != nil {
		args = append(args, pq.Array(filter.Orders))
		query += fmt.Sprintf(" AND order_id = ANY($%d)", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payment letters: %w", err)
	}
	defer rows.Close()

	var out []*PaymentLetter
	for rows.Next() {
		var letter PaymentLetter
		if err := rows.Scan(&letter.ID, &letter.BankID, &letter.Order); err != nil {
			return nil, fmt.Errorf("scan payment letter: %w", err)
		}
		out = append(out, &letter)
	}
	return out, rows.Err()
}

// PostgresDealStore persists deal rows in PostgreSQL.
type PostgresDealStore struct {
	db *sql.DB
}

func NewPostgresDealStore(db *sql.DB) *PostgresDealStore {
	return &PostgresDealStore{db: db}
}

func (s *PostgresDealStore) Create(ctx context.Context, deal *Deal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deals (id, producer_id, letter_id) VALUES ($1, $2, $3)`,
		deal.ID, deal.ProducerID, deal.Letter)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create deal: %w", err)
	}
	return nil
}

func (s *PostgresDealStore) List(ctx context.Context, producerID int64) ([]*Deal, error) {
	query := `SELECT id, producer_id, letter_id FROM deals`
	var args []any
	if producerID != 0 {
		query += ` WHERE producer_id = $1`
		args = append(args, producerID)
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	var out []*Deal
	for rows.Next() {
		var deal Deal
		if err := rows.Scan(&deal.ID, &deal.ProducerID, &deal.Letter); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		out = append(out, &deal)
	}
	return out, rows.Err()
}

// PostgresDeliveryStore persists delivery rows in PostgreSQL.
type PostgresDeliveryStore struct {
	db *sql.DB
}

func NewPostgresDeliveryStore(db *sql.DB) *PostgresDeliveryStore {
	return &PostgresDeliveryStore{db: db}
}

func (s *PostgresDeliveryStore) Create(ctx context.Context, delivery *Delivery) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (id, producer_id, deal_id) VALUES ($1, $2, $3)`,
		delivery.ID, delivery.ProducerID, delivery.Deal)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create delivery: %w", err)
	}
	return nil
}

func (s *PostgresDeliveryStore) FindByID(ctx context.Context, id string) (*Delivery, error) {
	var delivery Delivery
	err := s.db.QueryRowContext(ctx,
		`SELECT id, producer_id, deal_id FROM deliveries WHERE id = $1`, id).
		Scan(&delivery.ID, &delivery.ProducerID, &delivery.Deal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find delivery: %w", err)
	}
	return &delivery, nil
}

func (s *PostgresDeliveryStore) FindByDeal(ctx context.Context, dealID string) (*Delivery, error) {
	var delivery Delivery
	err := s.db.QueryRowContext(ctx,
		`SELECT id, producer_id, deal_id FROM deliveries WHERE deal_id = $1 LIMIT 1`, dealID).
		Scan(&delivery.ID, &delivery.ProducerID, &delivery.Deal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find delivery by deal: %w", err)
	}
	return &delivery, nil
}

func (s *PostgresDeliveryStore) List(ctx context.Context) ([]*Delivery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, producer_id, deal_id FROM deliveries ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var out []*Delivery
	for rows.Next() {
		var delivery Delivery
		if err := rows.Scan(&delivery.ID, &delivery.ProducerID, &delivery.Deal); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, &delivery)
	}
	return out, rows.Err()
}
