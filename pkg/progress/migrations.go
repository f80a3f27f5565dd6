package progress

// Schema statements are split on ';' and applied one by one; keep each
// statement free of embedded semicolons.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS progress (
	key TEXT PRIMARY KEY,
	word_ids TEXT NOT NULL DEFAULT '[]',
	updated_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS article_scans (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT,
	title TEXT,
	level TEXT,
	sentence_count INTEGER NOT NULL DEFAULT 0,
	matched_count INTEGER NOT NULL DEFAULT 0,
	learned_count INTEGER NOT NULL DEFAULT 0,
	scanned_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS word_occurrences (
	scan_id INTEGER NOT NULL REFERENCES article_scans(id),
	word_id TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (scan_id, word_id)
)
`
