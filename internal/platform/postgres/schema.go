// Package postgres owns the relational schema of the local index. The index
// stores identifiers and relationships only; quantities and statuses live on
// the ledger, so there are no status columns here.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		role       TEXT NOT NULL,
		ledger_key TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_organizations_ledger_key
		ON organizations (ledger_key) WHERE ledger_key <> ''`,
	`CREATE TABLE IF NOT EXISTS users (
		id              BIGSERIAL PRIMARY KEY,
		username        TEXT NOT NULL,
		organization_id BIGINT NOT NULL REFERENCES organizations (id),
		key             UUID NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ministry_orders (
		id          TEXT PRIMARY KEY,
		ministry_id BIGINT NOT NULL REFERENCES organizations (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS hospital_orders (
		id          TEXT PRIMARY KEY,
		hospital_id BIGINT NOT NULL REFERENCES organizations (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_hospital_orders_hospital
		ON hospital_orders (hospital_id)`,
	`CREATE TABLE IF NOT EXISTS producer_offers (
		id          TEXT PRIMARY KEY,
		producer_id BIGINT NOT NULL REFERENCES organizations (id),
		order_id    TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id          BIGSERIAL PRIMARY KEY,
		order_id    TEXT NOT NULL,
		price       BIGINT NOT NULL,
		producer_id BIGINT NOT NULL REFERENCES organizations (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS payment_letters (
		id         TEXT PRIMARY KEY,
		bank_id    BIGINT NOT NULL REFERENCES organizations (id),
		order_id   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_letters_order
		ON payment_letters (order_id)`,
	`CREATE TABLE IF NOT EXISTS deals (
		id          TEXT PRIMARY KEY,
		producer_id BIGINT NOT NULL REFERENCES organizations (id),
		letter_id   TEXT NOT NULL REFERENCES payment_letters (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS deliveries (
		id          TEXT PRIMARY KEY,
		producer_id BIGINT NOT NULL REFERENCES organizations (id),
		deal_id     TEXT NOT NULL REFERENCES deals (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS chain_progress (
		payment_id  BIGINT PRIMARY KEY,
		order_id    TEXT NOT NULL,
		bank_id     BIGINT NOT NULL,
		letter_id   TEXT NOT NULL DEFAULT '',
		deal_id     TEXT NOT NULL DEFAULT '',
		delivery_id TEXT NOT NULL DEFAULT '',
		step        TEXT NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate applies the schema. Statements are idempotent, so running it on
// every startup is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
