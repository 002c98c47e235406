package store

const schema = `
CREATE TABLE IF NOT EXISTS files (
    path      TEXT PRIMARY KEY,
    filename  TEXT NOT NULL,
    size      INTEGER NOT NULL,
    mtime_ns  INTEGER NOT NULL,
    hash      TEXT NOT NULL,
    hash_algo TEXT NOT NULL,
    last_seen INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_hash      ON files(hash);
CREATE INDEX IF NOT EXISTS idx_files_filename  ON files(filename);
CREATE INDEX IF NOT EXISTS idx_files_last_seen ON files(last_seen);
`

const recordColumns = "path, filename, size, mtime_ns, hash, hash_algo, last_seen"
