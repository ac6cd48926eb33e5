package store

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// Apply returns the games that match query and filter, ordered by key. The
// input slice is never modified. Sorting is stable and games missing the
// sort value come last in either direction.
func Apply(games []types.Game, query string, filter types.Filter, key types.SortKey) []types.Game {
	m := newMatcher()
	q := m.fold.String(query)
	out := make([]types.Game, 0, len(games))
	for _, g := range games {
		if m.matchesText(g, q) && m.matchesFilter(g, filter) {
			out = append(out, g.Clone())
		}
	}
	m.sortGames(out, key)
	return out
}

// matcher carries the case folder for one Apply call. A cases.Caser keeps
// internal state and must not be shared between goroutines.
type matcher struct {
	fold cases.Caser
}

func newMatcher() *matcher {
	return &matcher{fold: cases.Fold()}
}

func (m *matcher) matchesText(g types.Game, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(m.fold.String(g.Name), q) ||
		strings.Contains(m.fold.String(g.Description), q) ||
		strings.Contains(m.fold.String(g.Genre), q)
}

func (m *matcher) matchesFilter(g types.Game, f types.Filter) bool {
	if f.Genre != "" && m.fold.String(g.Genre) != m.fold.String(f.Genre) {
		return false
	}
	if f.Platform != "" && m.fold.String(g.Platform) != m.fold.String(f.Platform) {
		return false
	}
	if f.Rating != nil && (g.Rating == nil || *g.Rating < *f.Rating) {
		return false
	}
	if f.IsBorrowed != nil && g.IsBorrowed != *f.IsBorrowed {
		return false
	}
	if f.Status != "" && g.Status != f.Status {
		return false
	}
	for _, want := range f.Tags {
		if !m.hasTag(g.Tags, want) {
			return false
		}
	}
	return true
}

func (m *matcher) hasTag(tags types.TagList, want string) bool {
	w := m.fold.String(want)
	for _, t := range tags {
		if m.fold.String(t) == w {
			return true
		}
	}
	return false
}

// sortValue is the comparable value of a sort field. ok is false when the
// game has no value for it.
type sortValue struct {
	s  string
	n  float64
	ok bool
}

func (m *matcher) valueOf(g types.Game, field string) sortValue {
	str := func(s string) sortValue { return sortValue{s: m.fold.String(s), ok: s != ""} }
	num := func(p *float64) sortValue {
		if p == nil {
			return sortValue{}
		}
		return sortValue{n: *p, ok: true}
	}
	switch field {
	case types.SortGenre:
		return str(g.Genre)
	case types.SortPlatform:
		return str(g.Platform)
	case types.SortStatus:
		return str(g.Status)
	case types.SortRating:
		return num(g.Rating)
	case types.SortPurchasePrice:
		return num(g.PurchasePrice)
	case types.SortPurchaseDate:
		return str(g.PurchaseDate)
	case types.SortCompletionDate:
		return str(g.CompletionDate)
	default:
		return str(g.Name)
	}
}

func numeric(field string) bool {
	return field == types.SortRating || field == types.SortPurchasePrice
}

func (m *matcher) sortGames(games []types.Game, key types.SortKey) {
	if !types.IsSortField(key.Field) {
		key = types.SortKey{Field: types.SortName}
	}
	isNum := numeric(key.Field)
	sort.SliceStable(games, func(i, j int) bool {
		a, b := m.valueOf(games[i], key.Field), m.valueOf(games[j], key.Field)
		if !a.ok || !b.ok {
			return a.ok && !b.ok
		}
		var c int
		if isNum {
			switch {
			case a.n < b.n:
				c = -1
			case a.n > b.n:
				c = 1
			}
		} else {
			c = strings.Compare(a.s, b.s)
		}
		if key.Desc {
			return c > 0
		}
		return c < 0
	})
}

// Tags returns the sorted set of distinct tags across games. Tags differing
// only in case are kept apart.
func Tags(games []types.Game) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, g := range games {
		for _, t := range g.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}
