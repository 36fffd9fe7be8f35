package cache

const schema = `
CREATE TABLE IF NOT EXISTS installs (
    version       TEXT NOT NULL,
    platform      TEXT NOT NULL,
    path          TEXT NOT NULL,
    sha256        TEXT,
    downloaded_at INTEGER NOT NULL,
    PRIMARY KEY (version, platform)
);
`
