package sqlite

import "database/sql"

// schema mirrors the Postgres migrations. It runs on every open.
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL DEFAULT '0',
    pct INTEGER NOT NULL DEFAULT 20 CHECK (pct >= 0),
    vat TEXT NOT NULL DEFAULT '0',
    commentary TEXT NOT NULL DEFAULT '',
    file_url TEXT NOT NULL DEFAULT '',
    file_name TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'refused')),
    email TEXT NOT NULL,
    comment_admin TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_email ON bills(email);

CREATE TABLE IF NOT EXISTS bill_files (
    id TEXT PRIMARY KEY,
    bill_id TEXT,
    file_name TEXT NOT NULL,
    content_type TEXT NOT NULL DEFAULT 'application/octet-stream',
    content BLOB NOT NULL,
    owner_email TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE SET NULL
);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
