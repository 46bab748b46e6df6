package db

// Tables carry no foreign keys: events.port and skus.ports reference ports by
// name only. Range constraints on severity/risk/sentiment are not enforced.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              INTEGER PRIMARY KEY,
    username        TEXT UNIQUE NOT NULL,
    email           TEXT UNIQUE NOT NULL,
    hashed_password TEXT NOT NULL,
    is_admin        INTEGER DEFAULT 0,
    created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id              INTEGER PRIMARY KEY,
    title           TEXT NOT NULL,
    summary         TEXT NOT NULL,
    severity        REAL NOT NULL,
    port            TEXT NOT NULL,
    commodity       TEXT NOT NULL,
    region          TEXT,
    source          TEXT,
    sentiment_score REAL,
    tags            TEXT,
    timestamp       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
CREATE INDEX IF NOT EXISTS idx_events_port ON events(port);

CREATE TABLE IF NOT EXISTS skus (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    commodity  TEXT NOT NULL,
    ports      TEXT NOT NULL,
    risk_level REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS ports (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    country       TEXT NOT NULL,
    latitude      REAL NOT NULL,
    longitude     REAL NOT NULL,
    risk_score    REAL NOT NULL,
    active_events INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS articles (
    id           INTEGER PRIMARY KEY,
    title        TEXT NOT NULL,
    source       TEXT NOT NULL,
    url          TEXT,
    summary      TEXT NOT NULL,
    sentiment    REAL,
    published_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at);

CREATE TABLE IF NOT EXISTS forecasts_history (
    id            INTEGER PRIMARY KEY,
    sku_id        INTEGER NOT NULL,
    forecast_date TEXT NOT NULL,
    risk          REAL NOT NULL,
    upper_bound   REAL,
    lower_bound   REAL,
    created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_forecasts_history_sku ON forecasts_history(sku_id);
`
