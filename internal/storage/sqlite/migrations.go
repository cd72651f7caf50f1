package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts and weights are stored as TEXT and parsed through decimal so
// no precision is lost to floating point.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    contact_email TEXT NOT NULL DEFAULT '',
    currency TEXT NOT NULL DEFAULT 'XXX',
    code_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL,
    name TEXT NOT NULL,
    weight TEXT NOT NULL DEFAULT '1',
    activated INTEGER NOT NULL DEFAULT 1,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);

CREATE TABLE IF NOT EXISTS bills (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL,
    what TEXT NOT NULL,
    payer_id INTEGER NOT NULL,
    amount TEXT NOT NULL,
    bill_date TEXT NOT NULL,
    original_currency TEXT NOT NULL DEFAULT 'XXX',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (payer_id) REFERENCES members(id)
);

CREATE TABLE IF NOT EXISTS bill_owers (
    bill_id INTEGER NOT NULL,
    member_id INTEGER NOT NULL,
    PRIMARY KEY (bill_id, member_id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE,
    FOREIGN KEY (member_id) REFERENCES members(id)
);

CREATE INDEX IF NOT EXISTS idx_members_project_id ON members(project_id);
CREATE INDEX IF NOT EXISTS idx_bills_project_id ON bills(project_id);
CREATE INDEX IF NOT EXISTS idx_bills_payer_id ON bills(payer_id);
CREATE INDEX IF NOT EXISTS idx_bill_owers_member_id ON bill_owers(member_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
