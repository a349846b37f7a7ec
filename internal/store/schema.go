package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parse_errors         INTEGER NOT NULL DEFAULT 0,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    row_index            INTEGER NOT NULL,
    tx_id                TEXT NOT NULL,
    date                 TEXT NOT NULL,
    description          TEXT,
    amount               TEXT NOT NULL,
    type                 TEXT NOT NULL,
    is_planned           INTEGER NOT NULL DEFAULT 0,
    category             TEXT,
    periodicity          TEXT NOT NULL DEFAULT 'none',
    PRIMARY KEY (file_path, row_index)
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`
