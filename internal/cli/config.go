package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/gamevault/internal/auth"
	"github.com/mesh-intelligence/gamevault/internal/web"
	"github.com/mesh-intelligence/gamevault/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "GAMEVAULT"
)

// Config keys.
const (
	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeySyncStrategy  = "sync_strategy"
	cfgKeyBatchSize     = "batch_size"
	cfgKeyBatchInterval = "batch_interval"
	cfgKeyListenAddr    = "listen_addr"
	cfgKeySessionSecret = "session_secret"
	cfgKeySessionTTL    = "session_ttl"
	cfgKeyLocale        = "locale"
	cfgKeyLogLevel      = "log_level"
	cfgKeyBackupDir     = "backup_dir"
)

// loadConfig reads config.yaml from configDir using Viper. Every key can be
// overridden by a GAMEVAULT_<KEY> environment variable. A missing
// config.yaml is not an error; init writes one.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyBatchSize, types.DefaultBatchSize)
	v.SetDefault(cfgKeyBatchInterval, types.DefaultBatchInterval)
	v.SetDefault(cfgKeyListenAddr, web.DefaultAddr)
	v.SetDefault(cfgKeySessionSecret, "")
	v.SetDefault(cfgKeySessionTTL, auth.DefaultTTL.String())
	v.SetDefault(cfgKeyLocale, "")
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyBackupDir, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// vaultConfig builds the backend configuration for dataDir from the loaded
// settings and validates it.
func vaultConfig(v *viper.Viper, dataDir string) (types.Config, error) {
	cfg := types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		SQLiteConfig: &types.SQLiteConfig{
			SyncStrategy:  v.GetString(cfgKeySyncStrategy),
			BatchSize:     v.GetInt(cfgKeyBatchSize),
			BatchInterval: v.GetInt(cfgKeyBatchInterval),
		},
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// sessionTTL reads session_ttl as a Go duration such as "12h".
func sessionTTL(v *viper.Viper) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(cfgKeySessionTTL))
	if raw == "" {
		return auth.DefaultTTL, nil
	}
	ttl := v.GetDuration(cfgKeySessionTTL)
	if ttl <= 0 {
		return 0, fmt.Errorf("invalid %s %q", cfgKeySessionTTL, raw)
	}
	return ttl, nil
}
