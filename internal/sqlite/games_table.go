// This file implements the games table accessor.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

var _ types.GamesTable = (*gamesTable)(nil)

// gamesTable stores one cleaned JSON document per game and persists the
// whole table to games.jsonl after every write.
type gamesTable struct {
	backend *Backend
}

// gameRow returns the insert arguments for g in insertGameSQL order.
func gameRow(g types.Game) ([]any, error) {
	doc, err := types.GameDocument(g)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return []any{
		g.ID,
		g.Name,
		nullString(g.Genre),
		nullString(g.Platform),
		nullString(g.Status),
		nullFloat(g.Rating),
		nullFloat(g.PurchasePrice),
		nullString(g.PurchaseDate),
		nullString(g.CompletionDate),
		g.IsBorrowed,
		string(data),
		g.CreatedAt.UTC().Format(timeLayout),
		g.UpdatedAt.UTC().Format(timeLayout),
	}, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func decodeGame(document string) (types.Game, error) {
	var g types.Game
	if err := json.Unmarshal([]byte(document), &g); err != nil {
		return types.Game{}, fmt.Errorf("decoding game document: %w", err)
	}
	return g, nil
}

// List returns every game ordered by creation time.
func (t *gamesTable) List(ctx context.Context) ([]types.Game, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrVaultDetached
	}

	rows, err := b.db.QueryContext(ctx, "SELECT document FROM games ORDER BY created_at, game_id")
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	games := []types.Game{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		g, err := decodeGame(doc)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating games: %w", err)
	}
	return games, nil
}

// Get retrieves a game by ID.
func (t *gamesTable) Get(ctx context.Context, id string) (types.Game, error) {
	if id == "" {
		return types.Game{}, types.ErrInvalidID
	}
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.Game{}, types.ErrVaultDetached
	}

	var doc string
	err := b.db.QueryRowContext(ctx, "SELECT document FROM games WHERE game_id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Game{}, types.ErrNotFound
	}
	if err != nil {
		return types.Game{}, fmt.Errorf("getting game %s: %w", id, err)
	}
	return decodeGame(doc)
}

// Create validates and stores a new game under a fresh UUID v7.
func (t *gamesTable) Create(ctx context.Context, game types.Game) (string, error) {
	if err := game.Validate(); err != nil {
		return "", err
	}
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrVaultDetached
	}

	id, err := generateUUID()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	g := game.Clone()
	g.ID = id
	g.CreatedAt = now
	g.UpdatedAt = now

	row, err := gameRow(g)
	if err != nil {
		return "", err
	}
	if _, err := b.db.ExecContext(ctx, insertGameSQL, row...); err != nil {
		return "", fmt.Errorf("inserting game: %w", err)
	}
	if err := b.persist(gamesFile, t.persistJSONL); err != nil {
		return "", fmt.Errorf("persisting %s: %w", gamesFile, err)
	}
	b.logger.Debug("game created", "id", id, "name", g.Name)
	return id, nil
}

// Update replaces the document of game id, keeping its ID and creation time.
func (t *gamesTable) Update(ctx context.Context, id string, game types.Game) error {
	if id == "" {
		return types.ErrInvalidID
	}
	if err := game.Validate(); err != nil {
		return err
	}
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrVaultDetached
	}

	var createdAt string
	err := b.db.QueryRowContext(ctx, "SELECT created_at FROM games WHERE game_id = ?", id).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking game %s: %w", id, err)
	}
	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return fmt.Errorf("parsing created_at of %s: %w", id, err)
	}

	g := game.Clone()
	g.ID = id
	g.CreatedAt = created
	g.UpdatedAt = time.Now().UTC()
	row, err := gameRow(g)
	if err != nil {
		return err
	}
	// row[0] is the ID; move it to the WHERE clause.
	args := append(row[1:], id)
	_, err = b.db.ExecContext(ctx, `UPDATE games SET
    name = ?, genre = ?, platform = ?, status = ?, rating = ?, purchase_price = ?,
    purchase_date = ?, completion_date = ?, is_borrowed = ?, document = ?,
    created_at = ?, updated_at = ?
WHERE game_id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating game %s: %w", id, err)
	}
	if err := b.persist(gamesFile, t.persistJSONL); err != nil {
		return fmt.Errorf("persisting %s: %w", gamesFile, err)
	}
	b.logger.Debug("game updated", "id", id)
	return nil
}

// Delete removes the game with id.
func (t *gamesTable) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrVaultDetached
	}

	res, err := b.db.ExecContext(ctx, "DELETE FROM games WHERE game_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting game %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting game %s: %w", id, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	if err := b.persist(gamesFile, t.persistJSONL); err != nil {
		return fmt.Errorf("persisting %s: %w", gamesFile, err)
	}
	b.logger.Debug("game deleted", "id", id)
	return nil
}

// ExistsByName reports whether a game named exactly name is stored.
func (t *gamesTable) ExistsByName(ctx context.Context, name string) (bool, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return false, types.ErrVaultDetached
	}

	var one int
	err := b.db.QueryRowContext(ctx, "SELECT 1 FROM games WHERE name = ? LIMIT 1", name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking game name: %w", err)
	}
	return true, nil
}

// persistJSONL writes every game document to games.jsonl.
func (t *gamesTable) persistJSONL() error {
	b := t.backend
	return snapshotJSONL(b.db, b.config.DataDir, gamesFile,
		"SELECT document FROM games ORDER BY created_at, game_id",
		func(rows *sql.Rows) (json.RawMessage, error) {
			var doc string
			if err := rows.Scan(&doc); err != nil {
				return nil, err
			}
			return json.RawMessage(doc), nil
		})
}
