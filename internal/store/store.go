// Package store holds the in-memory view of the game collection. It owns the
// loaded list, the text query, the filter set, the sort key and the selected
// game, derives the visible games on every read, and forwards mutations to
// the persistence collaborator followed by a full reload.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// Persistence is the collaborator the store reads from and writes to.
// types.GamesTable satisfies it.
type Persistence interface {
	List(ctx context.Context) ([]types.Game, error)
	Create(ctx context.Context, game types.Game) (string, error)
	Update(ctx context.Context, id string, game types.Game) error
	Delete(ctx context.Context, id string) error
}

// Change kinds reported to subscribers.
const (
	ChangeGames     = "games"
	ChangeQuery     = "query"
	ChangeFilter    = "filter"
	ChangeSort      = "sort"
	ChangeSelection = "selection"
)

// Event describes one state change.
type Event struct {
	Kind  string `json:"type"`
	Total int    `json:"total"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSort sets the initial sort key.
func WithSort(key types.SortKey) Option {
	return func(s *Store) { s.sort = key }
}

// Store is safe for concurrent use. Mutations are not serialized: each call
// goes straight to persistence and the last reload to finish decides the
// visible state.
type Store struct {
	api    Persistence
	logger *slog.Logger

	mu         sync.Mutex
	games      []types.Game
	inflight   int
	selectedID string
	query      string
	filter     types.Filter
	sort       types.SortKey
	// emptyLoadTried is set once EnsureLoaded has tried to fill an empty
	// list and cleared by every mutation.
	emptyLoadTried bool

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Event)
}

// New creates a store backed by api. The list starts empty.
func New(api Persistence, opts ...Option) *Store {
	s := &Store{
		api:    api,
		logger: slog.Default(),
		games:  []types.Game{},
		sort:   types.DefaultSort,
		subs:   map[int]func(Event){},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the list with the persisted games. Loading is reported true
// while any load is in flight. Errors are returned unchanged and leave the
// list as it was.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	games, err := s.api.List(ctx)

	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("loading games failed", "error", err)
		return err
	}
	if games == nil {
		games = []types.Game{}
	}
	s.games = games
	total := len(games)
	s.mu.Unlock()

	s.logger.Debug("games loaded", "total", total)
	s.notify(Event{Kind: ChangeGames, Total: total})
	return nil
}

// EnsureLoaded loads the list when it is empty. It tries at most once per
// empty list until the next Upsert or Remove, so a collection that really is
// empty does not reload forever. A failed load does not count as a try. It
// reports whether a load was issued.
func (s *Store) EnsureLoaded(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if len(s.games) > 0 || s.emptyLoadTried || s.inflight > 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.emptyLoadTried = true
	s.mu.Unlock()

	if err := s.Load(ctx); err != nil {
		s.mu.Lock()
		s.emptyLoadTried = false
		s.mu.Unlock()
		return true, err
	}
	return true, nil
}

// Loading reports whether a load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Games returns a copy of the full list.
func (s *Store) Games() []types.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Game, len(s.games))
	for i, g := range s.games {
		out[i] = g.Clone()
	}
	return out
}

// Visible returns the games matching the current query and filter in the
// current sort order. It is recomputed on every call.
func (s *Store) Visible() []types.Game {
	s.mu.Lock()
	games, q, f, key := s.games, s.query, s.filter, s.sort
	s.mu.Unlock()
	return Apply(games, q, f, key)
}

// AllTags returns the sorted distinct tags of the whole list.
func (s *Store) AllTags() []string {
	s.mu.Lock()
	games := s.games
	s.mu.Unlock()
	return Tags(games)
}

// Upsert updates game when it has an ID and creates it otherwise, then
// reloads. The record sent to persistence never carries the ID. It returns
// the ID of the stored game.
func (s *Store) Upsert(ctx context.Context, game types.Game) (string, error) {
	id := game.ID
	if id != "" {
		if err := s.api.Update(ctx, id, game.WithoutID()); err != nil {
			return "", fmt.Errorf("updating game %s: %w", id, err)
		}
	} else {
		newID, err := s.api.Create(ctx, game.WithoutID())
		if err != nil {
			return "", fmt.Errorf("creating game: %w", err)
		}
		id = newID
	}
	s.mutated()
	return id, s.Load(ctx)
}

// Remove deletes the game with id and reloads.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting game %s: %w", id, err)
	}
	s.mutated()
	s.mu.Lock()
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.mu.Unlock()
	return s.Load(ctx)
}

func (s *Store) mutated() {
	s.mu.Lock()
	s.emptyLoadTried = false
	s.mu.Unlock()
}

// Select sets the selected game ID. An empty id clears the selection.
func (s *Store) Select(id string) {
	s.mu.Lock()
	s.selectedID = id
	total := len(s.games)
	s.mu.Unlock()
	s.notify(Event{Kind: ChangeSelection, Total: total})
}

// SelectedGame returns the selected game, or nil when nothing is selected or
// the selected ID is not in the list.
func (s *Store) SelectedGame() *types.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == "" {
		return nil
	}
	for _, g := range s.games {
		if g.ID == s.selectedID {
			c := g.Clone()
			return &c
		}
	}
	return nil
}

// SetQuery sets the free-text query.
func (s *Store) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	total := len(s.games)
	s.mu.Unlock()
	s.notify(Event{Kind: ChangeQuery, Total: total})
}

// Query returns the free-text query.
func (s *Store) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetFilter replaces the filter set.
func (s *Store) SetFilter(f types.Filter) {
	s.mu.Lock()
	s.filter = f
	total := len(s.games)
	s.mu.Unlock()
	s.notify(Event{Kind: ChangeFilter, Total: total})
}

// Filter returns the filter set.
func (s *Store) Filter() types.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetSort replaces the sort key.
func (s *Store) SetSort(key types.SortKey) {
	s.mu.Lock()
	s.sort = key
	total := len(s.games)
	s.mu.Unlock()
	s.notify(Event{Kind: ChangeSort, Total: total})
}

// Sort returns the sort key.
func (s *Store) Sort() types.SortKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// Subscribe registers fn to be called after every state change. Calls are
// synchronous and happen outside the store lock. The returned func removes
// the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(e Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}
