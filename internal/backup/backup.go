// Package backup writes timestamped JSON snapshots of the game collection.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // Europe/Warsaw must resolve on hosts without zoneinfo

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// FormatVersion is written into every backup's metadata.
const FormatVersion = "1.0"

const (
	fileLayout    = "2006-01-02-15-04-05"
	displayLayout = "02.01.2006, 15:04:05"
	displayZone   = "Europe/Warsaw"
)

// Lister returns every stored game.
type Lister interface {
	List(ctx context.Context) ([]types.Game, error)
}

// Metadata describes a backup file.
type Metadata struct {
	Timestamp  string `json:"timestamp"`
	Date       string `json:"date"`
	TotalGames int    `json:"totalGames"`
	Version    string `json:"version"`
}

// File is the on-disk backup document.
type File struct {
	Metadata Metadata     `json:"metadata"`
	Games    []types.Game `json:"games"`
}

// Result reports what Export wrote. Path is empty when nothing was written.
type Result struct {
	Path  string
	Total int
	Size  int64
}

// FileName returns the backup file name for now, in now's location.
func FileName(now time.Time) string {
	return "backup-" + now.Format(fileLayout) + ".json"
}

// Export writes every game returned by lister to a new backup file in dir,
// creating dir if needed. An empty collection writes nothing.
func Export(ctx context.Context, lister Lister, dir string, now time.Time) (Result, error) {
	games, err := lister.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("listing games: %w", err)
	}
	if len(games) == 0 {
		return Result{}, nil
	}

	display := now
	if loc, err := time.LoadLocation(displayZone); err == nil {
		display = now.In(loc)
	}
	doc := File{
		Metadata: Metadata{
			Timestamp:  now.UTC().Format("2006-01-02T15:04:05.000Z"),
			Date:       display.Format(displayLayout),
			TotalGames: len(games),
			Version:    FormatVersion,
		},
		Games: games,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encoding backup: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating backup dir: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("writing backup: %w", err)
	}
	return Result{Path: path, Total: len(games), Size: int64(len(data))}, nil
}
