package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL. Filterable game attributes get their own columns; the full
// cleaned document is kept in document.
const (
	createGames = `CREATE TABLE games (
    game_id TEXT PRIMARY KEY NOT NULL,
    name TEXT NOT NULL,
    genre TEXT,
    platform TEXT,
    status TEXT,
    rating REAL,
    purchase_price REAL,
    purchase_date TEXT,
    completion_date TEXT,
    is_borrowed INTEGER NOT NULL DEFAULT 0,
    document TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createUsers = `CREATE TABLE users (
    user_id TEXT PRIMARY KEY NOT NULL,
    email TEXT NOT NULL UNIQUE COLLATE NOCASE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxGamesName    = `CREATE INDEX idx_games_name ON games(name);`
	idxGamesCreated = `CREATE INDEX idx_games_created ON games(created_at, game_id);`
)

var schemaDDL = []string{
	createGames,
	createUsers,
}

var indexDDL = []string{
	idxGamesName,
	idxGamesCreated,
}

func createSchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
