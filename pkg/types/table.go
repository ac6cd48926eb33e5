package types

import (
	"context"
	"errors"
)

// GamesTable provides CRUD operations over game documents. It is the
// persistence collaborator behind the collection store.
type GamesTable interface {
	// List returns every game, oldest first. Returns an empty slice, not nil,
	// when the table is empty.
	List(ctx context.Context) ([]Game, error)

	// Get retrieves the game with the given ID.
	// Returns ErrNotFound if no game exists with that ID.
	Get(ctx context.Context, id string) (Game, error)

	// Create stores a new game and returns the generated UUID v7. Any ID on
	// the argument is ignored.
	Create(ctx context.Context, game Game) (string, error)

	// Update replaces the document of an existing game. The ID and creation
	// time are kept. Returns ErrNotFound if no game exists with that ID.
	Update(ctx context.Context, id string, game Game) error

	// Delete removes the game with the given ID.
	// Returns ErrNotFound if no game exists with that ID.
	Delete(ctx context.Context, id string) error

	// ExistsByName reports whether a game with exactly this name is stored.
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// UsersTable stores the accounts allowed to log in.
type UsersTable interface {
	// Create stores a new user and returns the generated ID.
	// Returns ErrDuplicateEmail if the email is already registered.
	Create(ctx context.Context, email, passwordHash string) (string, error)

	// GetByEmail looks a user up by email, case-insensitively.
	// Returns ErrNotFound if no such user exists.
	GetByEmail(ctx context.Context, email string) (User, error)
}

// Table operation errors.
var (
	ErrNotFound       = errors.New("entity not found")
	ErrInvalidID      = errors.New("invalid entity ID")
	ErrInvalidData    = errors.New("invalid entity data")
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrDuplicateEmail = errors.New("email already registered")
)
