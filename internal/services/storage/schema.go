package storage

// schemaSQL is applied on every open; all statements are idempotent.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
    user_id     TEXT NOT NULL,
    id          TEXT NOT NULL,
    date        TEXT NOT NULL,
    amount      TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT '',
    type        TEXT NOT NULL DEFAULT 'expense',
    PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_date
    ON transactions (user_id, date);

CREATE TABLE IF NOT EXISTS categories (
    user_id    TEXT NOT NULL,
    id         TEXT NOT NULL,
    name       TEXT NOT NULL,
    color      TEXT NOT NULL DEFAULT '',
    icon       TEXT NOT NULL DEFAULT '',
    is_default INTEGER NOT NULL DEFAULT 0,
    is_income  INTEGER NOT NULL DEFAULT 0,
    percentage REAL,
    position   INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS goals (
    user_id        TEXT NOT NULL,
    id             TEXT NOT NULL,
    name           TEXT NOT NULL,
    target_amount  TEXT NOT NULL,
    current_amount TEXT NOT NULL,
    deadline       TEXT NOT NULL,
    category       TEXT NOT NULL,
    created_at     TEXT NOT NULL,
    last_updated   TEXT,
    PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS preferences (
    user_id  TEXT NOT NULL PRIMARY KEY,
    document TEXT NOT NULL
);
`
