package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// attachTemp attaches a backend to a fresh temp dir and detaches on cleanup.
func attachTemp(t *testing.T, sqliteCfg *types.SQLiteConfig) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBackend(quietLogger())
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir, SQLiteConfig: sqliteCfg}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	t.Cleanup(func() { b.Detach() })
	return b, dir
}

func gamesOf(t *testing.T, b *Backend) types.GamesTable {
	t.Helper()
	tbl, err := b.Games()
	if err != nil {
		t.Fatalf("Games failed: %v", err)
	}
	return tbl
}

func mustCreate(t *testing.T, tbl types.GamesTable, g types.Game) string {
	t.Helper()
	id, err := tbl.Create(context.Background(), g)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", g.Name, err)
	}
	return id
}

func f64(v float64) *float64 { return &v }
