package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/gamevault/internal/sqlite"
)

// attachBackend resolves the data directory, creates a SQLite backend and
// attaches it. The caller must defer backend.Detach().
func (a *app) attachBackend() (*sqlite.Backend, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, err
	}
	cfg, err := vaultConfig(a.cfg, dataDir)
	if err != nil {
		return nil, err
	}
	backend := sqlite.NewBackend(a.logger)
	if err := backend.Attach(cfg); err != nil {
		return nil, systemError(fmt.Errorf("attach backend: %w", err))
	}
	return backend, nil
}

// detach releases the backend, folding a flush failure into err.
func (a *app) detach(backend *sqlite.Backend, err *error) {
	if derr := backend.Detach(); derr != nil {
		a.logger.Error("detach backend", "error", derr)
		if *err == nil {
			*err = systemError(fmt.Errorf("detach backend: %w", derr))
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return systemError(fmt.Errorf("encode output: %w", err))
	}
	return nil
}
