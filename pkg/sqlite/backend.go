// Package sqlite exposes the factory for the SQLite vault backend to code
// outside this module while keeping the implementation internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/gamevault/internal/sqlite"
	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// NewBackend creates a new SQLite backend instance. A nil logger uses
// slog.Default. The backend is not attached; call Attach with a Config to
// initialize.
//
// Example:
//
//	vault := sqlite.NewBackend(nil)
//	err := vault.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/home/me/.local/share/gamevault",
//	})
//	defer vault.Detach()
func NewBackend(logger *slog.Logger) types.Vault {
	return sqlite.NewBackend(logger)
}
