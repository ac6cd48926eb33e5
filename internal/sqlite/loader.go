// This file implements JSONL loading at Attach.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// jsonlLoaders maps each JSONL file to the function that inserts its records.
var jsonlLoaders = []struct {
	file string
	load func(tx *sql.Tx, records []json.RawMessage) (int, error)
}{
	{gamesFile, insertGames},
	{usersFile, insertUsers},
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records in
// one transaction: either every file loads or the database stays empty.
// Malformed lines and records that fail validation are skipped. Unknown
// fields are ignored. It returns the number of records loaded per file.
func loadAllJSONL(db *sql.DB, dataDir string) (map[string]int, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	counts := make(map[string]int, len(jsonlLoaders))
	for _, l := range jsonlLoaders {
		records, err := readJSONL(filepath.Join(dataDir, l.file))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", l.file, err)
		}
		if len(records) == 0 {
			continue
		}
		n, err := l.load(tx, records)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.file, err)
		}
		counts[l.file] = n
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing load transaction: %w", err)
	}
	return counts, nil
}

const insertGameSQL = `INSERT INTO games (
    game_id, name, genre, platform, status, rating, purchase_price,
    purchase_date, completion_date, is_borrowed, document, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertGames(tx *sql.Tx, records []json.RawMessage) (int, error) {
	stmt, err := tx.Prepare(insertGameSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing game insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, rec := range records {
		var g types.Game
		if err := json.Unmarshal(rec, &g); err != nil {
			continue
		}
		if g.ID == "" || g.Validate() != nil {
			continue
		}
		if g.CreatedAt.IsZero() {
			g.CreatedAt = time.Unix(0, 0).UTC()
		}
		if g.UpdatedAt.IsZero() {
			g.UpdatedAt = g.CreatedAt
		}
		row, err := gameRow(g)
		if err != nil {
			continue
		}
		if _, err := stmt.Exec(row...); err != nil {
			// Duplicate IDs keep the first occurrence.
			continue
		}
		n++
	}
	return n, nil
}

func insertUsers(tx *sql.Tx, records []json.RawMessage) (int, error) {
	stmt, err := tx.Prepare("INSERT INTO users (user_id, email, password_hash, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("preparing user insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, rec := range records {
		var u userJSON
		if err := json.Unmarshal(rec, &u); err != nil {
			continue
		}
		u.Email = strings.TrimSpace(u.Email)
		if u.UserID == "" || u.Email == "" || u.PasswordHash == "" {
			continue
		}
		if u.CreatedAt == "" {
			u.CreatedAt = time.Unix(0, 0).UTC().Format(timeLayout)
		}
		if _, err := stmt.Exec(u.UserID, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
			continue
		}
		n++
	}
	return n, nil
}
