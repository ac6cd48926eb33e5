package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()
	b := NewBackend(quietLogger())
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	if _, err := os.Stat(filepath.Join(tmpDir, dbFile)); os.IsNotExist(err) {
		t.Errorf("%s not created", dbFile)
	}
	for _, name := range []string{gamesFile, usersFile} {
		info, err := os.Stat(filepath.Join(tmpDir, name))
		if err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
		if info.Size() != 0 {
			t.Errorf("expected %s to be empty, got %d bytes", name, info.Size())
		}
	}

	if err := b.Attach(config); !errors.Is(err, types.ErrAlreadyAttached) {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}
}

func TestBackend_AttachCreatesNestedDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	b := NewBackend(nil)
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()
	if b.DataDir() != dir {
		t.Errorf("DataDir = %q, want %q", b.DataDir(), dir)
	}
}

func TestBackend_AttachRejectsInvalidConfig(t *testing.T) {
	b := NewBackend(quietLogger())
	err := b.Attach(types.Config{Backend: "firestore", DataDir: t.TempDir()})
	if !errors.Is(err, types.ErrBackendUnknown) {
		t.Fatalf("expected ErrBackendUnknown, got %v", err)
	}
	if _, err := b.Games(); !errors.Is(err, types.ErrVaultDetached) {
		t.Errorf("expected ErrVaultDetached, got %v", err)
	}
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend(quietLogger())
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	tbl, _ := b.Games()

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Errorf("second Detach should not error, got %v", err)
	}

	if _, err := b.Games(); !errors.Is(err, types.ErrVaultDetached) {
		t.Errorf("Games: expected ErrVaultDetached, got %v", err)
	}
	if _, err := b.Users(); !errors.Is(err, types.ErrVaultDetached) {
		t.Errorf("Users: expected ErrVaultDetached, got %v", err)
	}
	if _, err := tbl.List(context.Background()); !errors.Is(err, types.ErrVaultDetached) {
		t.Errorf("List on stale table: expected ErrVaultDetached, got %v", err)
	}
}

func TestGamesTable_CRUD(t *testing.T) {
	b, _ := attachTemp(t, nil)
	tbl := gamesOf(t, b)
	ctx := context.Background()

	id := mustCreate(t, tbl, types.Game{
		Name:     "The Witcher 3",
		Genre:    "RPG",
		Platform: "PC",
		Rating:   f64(9.5),
		Tags:     types.TagList{"rpg", "open-world"},
	})
	if id == "" {
		t.Fatal("Create returned empty ID")
	}

	got, err := tbl.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != id || got.Name != "The Witcher 3" || *got.Rating != 9.5 {
		t.Errorf("unexpected game: %+v", got)
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("expected equal non-zero timestamps, got %v / %v", got.CreatedAt, got.UpdatedAt)
	}

	err = tbl.Update(ctx, id, types.Game{Name: "The Witcher 3: GOTY", Platform: "Nintendo Switch"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	updated, _ := tbl.Get(ctx, id)
	if updated.Name != "The Witcher 3: GOTY" || updated.Platform != "Nintendo Switch" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Rating != nil || updated.Genre != "" || len(updated.Tags) != 0 {
		t.Errorf("update should replace the document, got %+v", updated)
	}
	if !updated.CreatedAt.Equal(got.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v -> %v", got.CreatedAt, updated.CreatedAt)
	}
	if updated.UpdatedAt.Before(got.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards")
	}

	if err := tbl.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := tbl.Get(ctx, id); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGamesTable_ListOrderAndEmpty(t *testing.T) {
	b, _ := attachTemp(t, nil)
	tbl := gamesOf(t, b)
	ctx := context.Background()

	games, err := tbl.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if games == nil || len(games) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", games)
	}

	for _, name := range []string{"first", "second", "third"} {
		mustCreate(t, tbl, types.Game{Name: name})
	}
	games, _ = tbl.List(ctx)
	var names []string
	for _, g := range games {
		names = append(names, g.Name)
	}
	if strings.Join(names, ",") != "first,second,third" {
		t.Errorf("List order = %v", names)
	}
}

func TestGamesTable_Errors(t *testing.T) {
	b, _ := attachTemp(t, nil)
	tbl := gamesOf(t, b)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"get empty id", func() error { _, err := tbl.Get(ctx, ""); return err }, types.ErrInvalidID},
		{"get missing", func() error { _, err := tbl.Get(ctx, "nope"); return err }, types.ErrNotFound},
		{"create without name", func() error { _, err := tbl.Create(ctx, types.Game{}); return err }, types.ErrInvalidName},
		{"create bad rating", func() error { _, err := tbl.Create(ctx, types.Game{Name: "x", Rating: f64(11)}); return err }, types.ErrInvalidData},
		{"create negative price", func() error { _, err := tbl.Create(ctx, types.Game{Name: "x", PurchasePrice: f64(-1)}); return err }, types.ErrInvalidData},
		{"update empty id", func() error { return tbl.Update(ctx, "", types.Game{Name: "x"}) }, types.ErrInvalidID},
		{"update missing", func() error { return tbl.Update(ctx, "nope", types.Game{Name: "x"}) }, types.ErrNotFound},
		{"delete empty id", func() error { return tbl.Delete(ctx, "") }, types.ErrInvalidID},
		{"delete missing", func() error { return tbl.Delete(ctx, "nope") }, types.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGamesTable_CreateIgnoresGivenID(t *testing.T) {
	b, _ := attachTemp(t, nil)
	tbl := gamesOf(t, b)
	id := mustCreate(t, tbl, types.Game{ID: "chosen", Name: "x"})
	if id == "chosen" {
		t.Error("Create must assign its own ID")
	}
}

func TestGamesTable_ExistsByName(t *testing.T) {
	b, _ := attachTemp(t, nil)
	tbl := gamesOf(t, b)
	ctx := context.Background()
	mustCreate(t, tbl, types.Game{Name: "Hollow Knight"})

	ok, err := tbl.ExistsByName(ctx, "Hollow Knight")
	if err != nil || !ok {
		t.Errorf("ExistsByName exact = %v, %v", ok, err)
	}
	ok, _ = tbl.ExistsByName(ctx, "hollow knight")
	if ok {
		t.Error("ExistsByName should be exact")
	}
}

func TestUsersTable(t *testing.T) {
	b, dir := attachTemp(t, nil)
	users, err := b.Users()
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	ctx := context.Background()

	id, err := users.Create(ctx, "Player@Example.com", "$2a$10$hash")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	u, err := users.GetByEmail(ctx, "player@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if u.UserID != id || u.PasswordHash != "$2a$10$hash" || u.CreatedAt.IsZero() {
		t.Errorf("unexpected user: %+v", u)
	}

	if _, err := users.Create(ctx, "PLAYER@example.com", "h"); !errors.Is(err, types.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
	if _, err := users.Create(ctx, "not-an-email", "h"); !errors.Is(err, types.ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := users.Create(ctx, "a@b.pl", ""); !errors.Is(err, types.ErrInvalidData) {
		t.Errorf("expected ErrInvalidData, got %v", err)
	}
	if _, err := users.GetByEmail(ctx, "ghost@example.com"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, usersFile))
	if err != nil {
		t.Fatalf("reading users file: %v", err)
	}
	if !strings.Contains(string(data), `"password_hash":"$2a$10$hash"`) {
		t.Errorf("users.jsonl missing hash: %s", data)
	}
}
