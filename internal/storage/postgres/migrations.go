package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations contains idempotent schema setup, executed on startup.
// Amounts and weights are NUMERIC and travel as text so decimal values
// never pass through float64.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    contact_email TEXT NOT NULL DEFAULT '',
    currency TEXT NOT NULL DEFAULT 'XXX',
    code_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id),
    name TEXT NOT NULL,
    weight NUMERIC NOT NULL DEFAULT 1,
    activated BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS bills (
    id BIGSERIAL PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id),
    what TEXT NOT NULL,
    payer_id BIGINT NOT NULL REFERENCES members(id),
    amount NUMERIC NOT NULL,
    bill_date DATE NOT NULL,
    original_currency TEXT NOT NULL DEFAULT 'XXX',
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bill_owers (
    bill_id BIGINT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    member_id BIGINT NOT NULL REFERENCES members(id),
    PRIMARY KEY (bill_id, member_id)
);

CREATE INDEX IF NOT EXISTS idx_members_project_id ON members(project_id);
CREATE INDEX IF NOT EXISTS idx_bills_project_id ON bills(project_id);
CREATE INDEX IF NOT EXISTS idx_bills_payer_id ON bills(payer_id);
CREATE INDEX IF NOT EXISTS idx_bill_owers_member_id ON bill_owers(member_id);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
