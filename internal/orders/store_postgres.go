package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"maskchain/pkg/platform/sentinel"
)

// PostgresMinistryOrderStore persists ministry order rows in PostgreSQL.
type PostgresMinistryOrderStore struct {
	db *sql.DB
}

func NewPostgresMinistryOrderStore(db *sql.DB) *PostgresMinistryOrderStore {
	return &PostgresMinistryOrderStore{db: db}
}

func (s *PostgresMinistryOrderStore) Create(ctx context.Context, order *MinistryOrder) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ministry_orders (id, ministry_id) VALUES ($1, $2)`,
		order.ID, order.MinistryID)
	if err != nil {
		return fmt.Errorf("create ministry order: %w", err)
	}
	return nil
}

func (s *PostgresMinistryOrderStore) FindByID(ctx context.Context, id string) (*MinistryOrder, error) {
	var order MinistryOrder
	err := s.db.QueryRowContext(ctx,
		`SELECT id, ministry_id FROM ministry_orders WHERE id = $1`, id).
		Scan(&order.ID, &order.MinistryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find ministry order: %w", err)
	}
	return &order, nil
}

func (s *PostgresMinistryOrderStore) List(ctx context.Context) ([]*MinistryOrder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ministry_id FROM ministry_orders ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list ministry orders: %w", err)
	}
	defer rows.Close()

	var out []*MinistryOrder
	for rows.Next() {
		var order MinistryOrder
		if err := rows.Scan(&order.ID, &order.MinistryID); err != nil {
			return nil, fmt.Errorf("scan ministry order: %w", err)
		}
		out = append(out, &order)
	}
	return out, rows.Err()
}

// PostgresHospitalOrderStore persists hospital order rows in PostgreSQL.
type PostgresHospitalOrderStore struct {
	db *sql.DB
}

func NewPostgresHospitalOrderStore(db *sql.DB) *PostgresHospitalOrderStore {
	return &PostgresHospitalOrderStore{db: db}
}

func (s *PostgresHospitalOrderStore) Create(ctx context.Context, order *HospitalOrder) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hospital_orders (id, hospital_id) VALUES ($1, $2)`,
		order.ID, order.HospitalID)
	if err != nil {
		return fmt.Errorf("create hospital order: %w", err)
	}
	return nil
}

func (s *PostgresHospitalOrderStore) FindByID(ctx context.Context, id string) (*HospitalOrder, error) {
	var order HospitalOrder
	err := s.db.QueryRowContext(ctx,
		`SELECT id, hospital_id FROM hospital_orders WHERE id = $1`, id).
		Scan(&order.ID, &order.HospitalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find hospital order: %w", err)
	}
	return &order, nil
}

func (s *PostgresHospitalOrderStore) ListByHospital(ctx context.Context, hospitalID int64) ([]*HospitalOrder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, hospital_id FROM hospital_orders WHERE hospital_id = $1 ORDER BY created_at`,
		hospitalID)
	if err != nil {
		return nil, fmt.Errorf("list hospital orders: %w", err)
	}
	defer rows.Close()

	var out []*HospitalOrder
	for rows.Next() {
		var order HospitalOrder
		if err := rows.Scan(&order.ID, &order.HospitalID); err != nil {
			return nil, fmt.Errorf("scan hospital order: %w", err)
		}
		out = append(out, &order)
	}
	return out, rows.Err()
}
