package backup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

type listerFunc func(ctx context.Context) ([]types.Game, error)

func (f listerFunc) List(ctx context.Context) ([]types.Game, error) { return f(ctx) }

func TestExportWritesBackupFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	rating := 8.0
	lister := listerFunc(func(context.Context) ([]types.Game, error) {
		return []types.Game{
			{ID: "g1", Name: "Hades", Rating: &rating},
			{ID: "g2", Name: "Celeste"},
		}, nil
	})
	now := time.Date(2024, 3, 15, 11, 4, 5, 0, time.UTC)

	res, err := Export(context.Background(), lister, dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup-2024-03-15-11-04-05.json"), res.Path)
	assert.Equal(t, 2, res.Total)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), res.Size)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	meta := raw["metadata"].(map[string]any)
	assert.Equal(t, "2024-03-15T11:04:05.000Z", meta["timestamp"])
	assert.Equal(t, "15.03.2024, 12:04:05", meta["date"])
	assert.Equal(t, float64(2), meta["totalGames"])
	assert.Equal(t, "1.0", meta["version"])

	games := raw["games"].([]any)
	require.Len(t, games, 2)
	first := games[0].(map[string]any)
	assert.Equal(t, "g1", first["id"])
	assert.Equal(t, float64(8), first["rating"])
}

func TestExportEmptyCollectionWritesNothing(t *testing.T) {
	dir := t.TempDir()
	lister := listerFunc(func(context.Context) ([]types.Game, error) { return nil, nil })

	res, err := Export(context.Background(), lister, dir, time.Now())
	require.NoError(t, err)
	assert.Empty(t, res.Path)
	assert.Zero(t, res.Total)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportListError(t *testing.T) {
	boom := errors.New("boom")
	lister := listerFunc(func(context.Context) ([]types.Game, error) { return nil, boom })
	_, err := Export(context.Background(), lister, t.TempDir(), time.Now())
	assert.ErrorIs(t, err, boom)
}
