package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// fakeAPI is an in-memory Persistence that records every call.
type fakeAPI struct {
	mu      sync.Mutex
	games   []types.Game
	nextID  int
	calls   []string
	listErr error
	// listHook, when set, runs inside List before it returns.
	listHook func(call int)
	lists    int
}

func (f *fakeAPI) List(ctx context.Context) ([]types.Game, error) {
	f.mu.Lock()
	f.lists++
	n := f.lists
	f.calls = append(f.calls, "list")
	out := make([]types.Game, len(f.games))
	for i, g := range f.games {
		out[i] = g.Clone()
	}
	err := f.listErr
	hook := f.listHook
	f.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeAPI) Create(ctx context.Context, g types.Game) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g.ID != "" {
		return "", fmt.Errorf("create received id %q", g.ID)
	}
	f.nextID++
	g.ID = fmt.Sprintf("game-%d", f.nextID)
	f.games = append(f.games, g)
	f.calls = append(f.calls, "create")
	return g.ID, nil
}

func (f *fakeAPI) Update(ctx context.Context, id string, g types.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g.ID != "" {
		return fmt.Errorf("update received id %q", g.ID)
	}
	f.calls = append(f.calls, "update")
	for i := range f.games {
		if f.games[i].ID == id {
			g.ID = id
			f.games[i] = g
			return nil
		}
	}
	return types.ErrNotFound
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete")
	for i := range f.games {
		if f.games[i].ID == id {
			f.games = append(f.games[:i], f.games[i+1:]...)
			return nil
		}
	}
	return types.ErrNotFound
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}
