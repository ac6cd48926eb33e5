// Package importer loads games from a directory of markdown notes whose YAML
// front matter carries the game attributes. The note's file name is the game
// name.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// Front matter keys.
const (
	keyPurchaseDate   = "Data utworzenia"
	keyPlatform       = "Platforma"
	keyCover          = "Okładka"
	keyVersion        = "Wersja"
	keyStatus         = "Status"
	keyRating         = "Ocena"
	keyCompletionDate = "Data ukończenia"
	keyTags           = "tags"
	keyComment        = "Komentarz"
)

// VersionMap translates note version labels to stored version values.
var VersionMap = map[string]string{
	"Pudełko - kartridż": types.VersionBoxCartridge,
	"Pudełko - kod":      types.VersionBoxCode,
	"Cyfrowa":            types.VersionDigital,
	"Pudełko płyta":      types.VersionBoxDisc,
	"Pudełko kartridź":   types.VersionBoxCartridge,
}

// StatusMap translates note status labels to stored status values.
var StatusMap = map[string]string{
	"Lista życzeń":       "wishlist",
	"Zamówiony Preorder": "preordered",
	"Gotowa do grania":   "ready_to_play",
	"W trakcie":          "in_progress",
	"Ukończona":          "completed",
	"Wstrzymana":         "on_hold",
	"Nie ukończona":      "not_completed",
}

// PlatformMap translates platform abbreviations to platform names.
var PlatformMap = map[string]string{
	"NS":  "Nintendo Switch",
	"NS2": "Nintendo Switch 2",
	"PC":  "PC",
	"Mac": "Mac",
}

// Games is the part of the games table the importer needs.
type Games interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, game types.Game) (string, error)
}

// FileError records a note that could not be imported.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string { return e.File + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  int
	Failed   int
	Errors   []FileError
}

// Importer imports markdown notes into a games table.
type Importer struct {
	games  Games
	logger *slog.Logger
}

// New creates an Importer. A nil logger uses slog.Default.
func New(games Games, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{games: games, logger: logger}
}

// Run imports every *.md file in dir, in name order. Games whose name is
// already stored are skipped. Per-file failures are counted in the result;
// the returned error is reserved for failures to read dir itself.
func (im *Importer) Run(ctx context.Context, dir string) (Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, fmt.Errorf("reading import dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var res Result
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		id, skipped, err := im.importFile(ctx, filepath.Join(dir, file))
		switch {
		case err != nil:
			res.Failed++
			res.Errors = append(res.Errors, FileError{File: file, Err: err})
			im.logger.Warn("import failed", "file", file, "error", err)
		case skipped:
			res.Skipped++
			im.logger.Info("import skipped, name exists", "file", file)
		default:
			res.Imported++
			im.logger.Info("game imported", "file", file, "id", id)
		}
	}
	im.logger.Info("import finished",
		"dir", dir,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"failed", res.Failed)
	return res, nil
}

func (im *Importer) importFile(ctx context.Context, path string) (id string, skipped bool, err error) {
	name, front, err := ParseFile(path)
	if err != nil {
		return "", false, err
	}
	exists, err := im.games.ExistsByName(ctx, name)
	if err != nil {
		return "", false, fmt.Errorf("checking name: %w", err)
	}
	if exists {
		return "", true, nil
	}
	id, err = im.games.Create(ctx, MapGame(name, front))
	if err != nil {
		return "", false, fmt.Errorf("creating game: %w", err)
	}
	return id, false, nil
}

var errNoFrontMatter = errors.New("unterminated front matter")

// ParseFile reads a note and returns the game name taken from the file name
// and the decoded front matter. A note without front matter yields an empty
// map.
func ParseFile(path string) (string, map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading note: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".md")
	front, err := parseFrontMatter(data)
	if err != nil {
		return "", nil, err
	}
	return name, front, nil
}

func parseFrontMatter(data []byte) (map[string]any, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return map[string]any{}, nil
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, errNoFrontMatter
	}
	front := map[string]any{}
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &front); err != nil {
		return nil, fmt.Errorf("decoding front matter: %w", err)
	}
	return front, nil
}

// MapGame converts front matter into a game named name. Unknown keys are
// ignored and unmapped labels pass through unchanged.
func MapGame(name string, front map[string]any) types.Game {
	g := types.Game{Name: name}

	if v := scalar(front[keyPurchaseDate]); v != "" {
		g.PurchaseDate = dateOnly(v)
	}
	if v := scalar(front[keyPlatform]); v != "" {
		g.Platform = lookup(PlatformMap, v)
	}
	if v := scalar(front[keyCover]); v != "" {
		g.CoverImage = v
	}
	if v := scalar(front[keyVersion]); v != "" {
		g.Version = lookup(VersionMap, v)
	}
	if v := scalar(front[keyStatus]); v != "" {
		g.Status = lookup(StatusMap, v)
	}
	if n, ok := leadingInt(scalar(front[keyRating])); ok {
		r := float64(n)
		g.Rating = &r
	}
	if v := strings.TrimSpace(scalar(front[keyCompletionDate])); v != "" {
		g.CompletionDate = dateOnly(v)
	}
	if list, ok := front[keyTags].([]any); ok {
		for _, t := range list {
			if s := scalar(t); s != "" {
				g.Tags = append(g.Tags, s)
			}
		}
	}
	if v := scalar(front[keyComment]); strings.TrimSpace(v) != "" {
		g.Comment = v
	}
	return g
}

func lookup(m map[string]string, v string) string {
	if mapped, ok := m[v]; ok {
		return mapped
	}
	return v
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(types.DateLayout)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// dateOnly keeps the calendar date of a date-time value such as
// "2024-03-15 10:22".
func dateOnly(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > len(types.DateLayout) {
		if _, err := time.Parse(types.DateLayout, v[:len(types.DateLayout)]); err == nil {
			return v[:len(types.DateLayout)]
		}
	}
	return v
}

// leadingInt parses the integer prefix of s, so "8/10" and "8.5" give 8.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
