package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/gamevault/internal/web"
	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend       string `yaml:"backend"`
	DataDir       string `yaml:"data_dir,omitempty"`
	SyncStrategy  string `yaml:"sync_strategy"`
	ListenAddr    string `yaml:"listen_addr"`
	SessionSecret string `yaml:"session_secret"`
	SessionTTL    string `yaml:"session_ttl"`
	LogLevel      string `yaml:"log_level"`
}

const configHeader = `# GameVault configuration.
# Every key can be overridden with a GAMEVAULT_<KEY> environment variable.
# Further keys: batch_size, batch_interval (sync_strategy: batch),
# locale (pl or en), backup_dir.
`

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize gamevault storage",
		Long:  "Create the configuration and data directories, write config.yaml and initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.resolvedConfigDir, 0o755); err != nil {
		return systemError(fmt.Errorf("create config directory: %w", err))
	}
	configPath := filepath.Join(a.resolvedConfigDir, configFileExt)
	created, err := writeConfigIfMissing(configPath, dataDir)
	if err != nil {
		return systemError(fmt.Errorf("write config: %w", err))
	}
	if created {
		a.logger.Info("wrote config", "path", configPath)
	}

	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	if err := backend.Detach(); err != nil {
		return systemError(fmt.Errorf("finalize storage: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "GameVault initialized in %s\n", backend.DataDir())
	return nil
}

// writeConfigIfMissing creates config.yaml with default values and a fresh
// session secret. An existing file is left untouched and created is false.
func writeConfigIfMissing(path, dataDir string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	secret, err := newSecret()
	if err != nil {
		return false, err
	}
	cfg := configFile{
		Backend:       types.BackendSQLite,
		DataDir:       dataDir,
		SyncStrategy:  types.SyncImmediate,
		ListenAddr:    web.DefaultAddr,
		SessionSecret: secret,
		SessionTTL:    "24h",
		LogLevel:      "info",
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	// The file carries the session secret.
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o600); err != nil {
		return false, err
	}
	return true, nil
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
