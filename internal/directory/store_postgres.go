package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"maskchain/pkg/platform/sentinel"
)

// PostgresOrganizationStore persists organizations in PostgreSQL. Pure I/O;
// key derivation and role checks belong to the service layer.
type PostgresOrganizationStore struct {
	db *sql.DB
}

func NewPostgresOrganizationStore(db *sql.DB) *PostgresOrganizationStore {
	return &PostgresOrganizationStore{db: db}
}

func (s *PostgresOrganizationStore) Create(ctx context.Context, org *Organization) error {
	query := `
		INSERT INTO organizations (name, role, ledger_key)
		VALUES ($1, $2, '')
		RETURNING id
	`
	if err := s.db.QueryRowContext(ctx, query, org.Name, string(org.Role)).Scan(&org.ID); err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

// AssignLedgerKey sets the derived key exactly once. The empty-key guard in
// the WHERE clause is what makes role/key immutability hold under concurrent
// creates.
func (s *PostgresOrganizationStore) AssignLedgerKey(ctx context.Context, id int64, key string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE organizations SET ledger_key = $2 WHERE id = $1 AND ledger_key = ''`, id, key)
	if err != nil {
		return fmt.Errorf("assign ledger key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign ledger key: %w", err)
	}
	if affected == 0 {
		if _, findErr := s.FindByID(ctx, id); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresOrganizationStore) FindByID(ctx context.Context, id int64) (*Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, ledger_key FROM organizations WHERE id = $1`, id)
	return scanOrganization(row)
}

func (s *PostgresOrganizationStore) FindByLedgerKey(ctx context.Context, key string) (*Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, ledger_key FROM organizations WHERE ledger_key = $1`, key)
	return scanOrganization(row)
}

func (s *PostgresOrganizationStore) ListByRole(ctx context.Context, role Role) ([]*Organization, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, ledger_key FROM organizations WHERE role = $1 ORDER BY id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list organizations by role: %w", err)
	}
	defer rows.Close()
	return collectOrganizations(rows)
}

func (s *PostgresOrganizationStore) List(ctx context.Context) ([]*Organization, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, ledger_key FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()
	return collectOrganizations(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row rowScanner) (*Organization, error) {
	var org Organization
	var role string
	if err := row.Scan(&org.ID, &org.Name, &role, &org.LedgerKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	org.Role = Role(role)
	return &org, nil
}

func collectOrganizations(rows *sql.Rows) ([]*Organization, error) {
	var out []*Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

// PostgresUserStore persists directory users in PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, organization_id, key)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, user.Username, user.OrganizationID, user.Key.String()).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, organization_id, key FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresUserStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, organization_id, key FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var out []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func scanUser(row rowScanner) (*User, error) {
	var user User
	var rawKey string
	if err := row.Scan(&user.ID, &user.Username, &user.OrganizationID, &rawKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	key, err := uuid.Parse(rawKey)
	if err != nil {
		return nil, fmt.Errorf("parse user key: %w", err)
	}
	user.Key = key
	return &user, nil
}
