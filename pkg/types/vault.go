package types

import "errors"

// Vault defines the interface for backend-agnostic storage access.
// Callers attach to a backend, use the games and users tables, and detach
// when done.
type Vault interface {
	// Games returns the games table.
	// Returns ErrVaultDetached if the vault is not attached.
	Games() (GamesTable, error)

	// Users returns the users table.
	// Returns ErrVaultDetached if the vault is not attached.
	Users() (UsersTable, error)

	// Attach connects the Vault to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, table operations return ErrVaultDetached.
	Detach() error
}

// Vault lifecycle errors.
var (
	ErrVaultDetached   = errors.New("vault is detached")
	ErrAlreadyAttached = errors.New("vault is already attached")
)
