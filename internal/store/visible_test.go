package store

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

func f64(v float64) *float64 { return &v }
func boolp(v bool) *bool     { return &v }

func names(games []types.Game) []string {
	out := make([]string, len(games))
	for i, g := range games {
		out[i] = g.Name
	}
	return out
}

func TestApplyTextQuery(t *testing.T) {
	games := []types.Game{
		{ID: "1", Name: "The Witcher 3", Genre: "RPG"},
		{ID: "2", Name: "Celeste", Description: "A hard WITCHy platformer"},
		{ID: "3", Name: "Doom", Genre: "FPS"},
	}
	name := types.SortKey{Field: types.SortName}

	assert.Equal(t, []string{"Celeste", "Doom", "The Witcher 3"}, names(Apply(games, "", types.Filter{}, name)))
	assert.Equal(t, []string{"Celeste", "The Witcher 3"}, names(Apply(games, "witch", types.Filter{}, name)))
	assert.Equal(t, []string{"Doom"}, names(Apply(games, "fps", types.Filter{}, name)))
	assert.Empty(t, Apply(games, "zelda", types.Filter{}, name))
}

func TestApplyFilters(t *testing.T) {
	games := []types.Game{
		{Name: "A", Genre: "RPG", Platform: "PC", Rating: f64(9), Status: "completed", Tags: types.TagList{"Open-World", "rpg"}},
		{Name: "B", Genre: "rpg", Platform: "pc", Rating: f64(6), IsBorrowed: true},
		{Name: "C", Genre: "FPS", Platform: "Nintendo Switch"},
	}
	key := types.SortKey{Field: types.SortName}

	tests := []struct {
		name   string
		filter types.Filter
		want   []string
	}{
		{"no filter", types.Filter{}, []string{"A", "B", "C"}},
		{"genre ignores case", types.Filter{Genre: "RPG"}, []string{"A", "B"}},
		{"platform ignores case", types.Filter{Platform: "PC"}, []string{"A", "B"}},
		{"rating threshold", types.Filter{Rating: f64(7)}, []string{"A"}},
		{"rating zero excludes unrated", types.Filter{Rating: f64(0)}, []string{"A", "B"}},
		{"borrowed", types.Filter{IsBorrowed: boolp(true)}, []string{"B"}},
		{"not borrowed", types.Filter{IsBorrowed: boolp(false)}, []string{"A", "C"}},
		{"status exact", types.Filter{Status: "completed"}, []string{"A"}},
		{"status is case-sensitive", types.Filter{Status: "Completed"}, nil},
		{"tags ignore case", types.Filter{Tags: []string{"open-world", "RPG"}}, []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Apply(games, "", tt.filter, key))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyTagFilterIsConjunctive(t *testing.T) {
	games := []types.Game{
		{Name: "only-rpg", Tags: types.TagList{"rpg"}},
		{Name: "all-three", Tags: types.TagList{"rpg", "open-world", "co-op"}},
	}
	got := Apply(games, "", types.Filter{Tags: []string{"rpg", "open-world"}}, types.SortKey{Field: types.SortName})
	assert.Equal(t, []string{"all-three"}, names(got))
}

func TestApplySortRatingDescIsStable(t *testing.T) {
	games := []types.Game{
		{Name: "three", Rating: f64(3)},
		{Name: "nine-a", Rating: f64(9)},
		{Name: "nine-b", Rating: f64(9)},
		{Name: "none"},
	}
	got := Apply(games, "", types.Filter{}, types.SortKey{Field: types.SortRating, Desc: true})
	assert.Equal(t, []string{"nine-a", "nine-b", "three", "none"}, names(got))

	got = Apply(games, "", types.Filter{}, types.SortKey{Field: types.SortRating})
	assert.Equal(t, []string{"three", "nine-a", "nine-b", "none"}, names(got))
}

func TestApplyDefaultSortIsNewestPurchaseFirst(t *testing.T) {
	games := []types.Game{
		{Name: "old", PurchaseDate: "2019-01-01"},
		{Name: "undated"},
		{Name: "new", PurchaseDate: "2024-06-30"},
	}
	got := Apply(games, "", types.Filter{}, types.DefaultSort)
	assert.Equal(t, []string{"new", "old", "undated"}, names(got))
}

func TestApplyUnknownSortFallsBackToName(t *testing.T) {
	games := []types.Game{{Name: "b"}, {Name: "C"}, {Name: "a"}}
	got := Apply(games, "", types.Filter{}, types.SortKey{Field: "releaseDate", Desc: true})
	assert.Equal(t, []string{"a", "b", "C"}, names(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	games := []types.Game{{Name: "b", Tags: types.TagList{"x"}}, {Name: "a"}}
	out := Apply(games, "", types.Filter{}, types.SortKey{Field: types.SortName})
	out[1].Tags[0] = "changed"
	assert.Equal(t, "b", games[0].Name)
	assert.Equal(t, "x", games[0].Tags[0])
}

func randomGames(r *rand.Rand, n int) []types.Game {
	genres := []string{"RPG", "rpg", "FPS", "Indie", ""}
	platforms := []string{"PC", "Mac", "Nintendo Switch"}
	statuses := []string{"completed", "in_progress", ""}
	tagPool := []string{"rpg", "RPG", "co-op", "open-world", "indie"}
	words := []string{"dark", "souls", "hollow", "knight", "witcher", "portal"}

	games := make([]types.Game, n)
	for i := range games {
		g := types.Game{
			ID:          string(rune('a' + i%26)),
			Name:        words[r.IntN(len(words))] + " " + words[r.IntN(len(words))],
			Genre:       genres[r.IntN(len(genres))],
			Platform:    platforms[r.IntN(len(platforms))],
			Status:      statuses[r.IntN(len(statuses))],
			IsBorrowed:  r.IntN(2) == 0,
			Description: words[r.IntN(len(words))],
		}
		if r.IntN(3) > 0 {
			g.Rating = f64(float64(r.IntN(11)))
		}
		for _, tg := range tagPool {
			if r.IntN(3) == 0 {
				g.Tags = append(g.Tags, tg)
			}
		}
		games[i] = g
	}
	return games
}

func TestApplyProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	queries := []string{"", "SOUL", "rpg", "x"}
	filters := []types.Filter{
		{},
		{Genre: "rpg"},
		{Platform: "pc", Rating: f64(5)},
		{IsBorrowed: boolp(false), Status: "completed"},
		{Tags: []string{"RPG", "co-op"}},
	}
	for round := 0; round < 50; round++ {
		games := randomGames(r, 1+r.IntN(30))
		for _, q := range queries {
			for _, f := range filters {
				key := types.SortKey{Field: types.SortFields[r.IntN(len(types.SortFields))], Desc: r.IntN(2) == 0}
				got := Apply(games, q, f, key)

				assert.Equal(t, got, Apply(games, q, f, key), "deterministic")
				assert.LessOrEqual(t, len(got), len(games))
				m := newMatcher()
				for _, g := range got {
					assert.True(t, m.matchesText(g, m.fold.String(q)), "text rule")
					assert.True(t, m.matchesFilter(g, f), "filter rule")
					assert.True(t, containsGame(games, g), "subset")
					if q != "" {
						lq := strings.ToLower(q)
						assert.True(t,
							strings.Contains(strings.ToLower(g.Name), lq) ||
								strings.Contains(strings.ToLower(g.Description), lq) ||
								strings.Contains(strings.ToLower(g.Genre), lq))
					}
				}
			}
		}
	}
}

func containsGame(list []types.Game, g types.Game) bool {
	for _, e := range list {
		if e.ID == g.ID && e.Name == g.Name && e.Description == g.Description {
			return true
		}
	}
	return false
}

func TestTags(t *testing.T) {
	games := []types.Game{
		{Tags: types.TagList{"rpg", "co-op"}},
		{Tags: types.TagList{"RPG", "rpg"}},
		{},
	}
	assert.Equal(t, []string{"RPG", "co-op", "rpg"}, Tags(games))
	assert.Equal(t, []string{}, Tags(nil))
}

func TestApplyConcurrentCallers(t *testing.T) {
	games := []types.Game{
		{ID: "1", Name: "Straße Racer", Genre: "Racing", Tags: types.TagList{"Arcade"}},
		{ID: "2", Name: "Hades", Genre: "Roguelike", Tags: types.TagList{"co-op"}},
		{ID: "3", Name: "STRASSE Kings", Genre: "racing", Tags: types.TagList{"arcade"}},
	}
	want := Apply(games, "strasse", types.Filter{Genre: "RACING", Tags: []string{"ARCADE"}}, types.SortKey{Field: types.SortName})
	require.Len(t, want, 2)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got := Apply(games, "strasse", types.Filter{Genre: "RACING", Tags: []string{"ARCADE"}}, types.SortKey{Field: types.SortName})
				if len(got) != len(want) {
					errs <- fmt.Errorf("got %d games, want %d", len(got), len(want))
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
