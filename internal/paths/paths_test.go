package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoHome = errors.New("no home directory")

// fakePlatform points the platform lookups at fixed directories for the
// duration of the test. An empty value makes the lookup fail.
func fakePlatform(t *testing.T, home, userConfig string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	lookup := func(dir string) func() (string, error) {
		return func() (string, error) {
			if dir == "" {
				return "", errNoHome
			}
			return dir, nil
		}
	}
	platformDir.homeDir = lookup(home)
	platformDir.userConfigDir = lookup(userConfig)
}

// clearEnv unsets every variable the resolvers read.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvConfigDir, EnvDataDir, "XDG_CONFIG_HOME", "XDG_DATA_HOME"} {
		t.Setenv(name, "")
	}
}

func TestXDGDir(t *testing.T) {
	tests := []struct {
		name    string
		xdg     string
		home    string
		want    string
		wantErr bool
	}{
		{name: "xdg variable wins", xdg: "/xdg", home: "/home/ola", want: "/xdg/gamevault"},
		{name: "home fallback", home: "/home/ola", want: "/home/ola/.local/share/gamevault"},
		{name: "no home", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("XDG_DATA_HOME", tt.xdg)
			fakePlatform(t, tt.home, "")

			got, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
			if tt.wantErr {
				assert.ErrorIs(t, err, errNoHome)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestUserConfigSubdir(t *testing.T) {
	fakePlatform(t, "", "/Users/ola/Library/Application Support")
	got, err := userConfigSubdir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/Users/ola/Library/Application Support", "gamevault"), got)

	fakePlatform(t, "", "")
	_, err = userConfigSubdir()
	assert.ErrorIs(t, err, errNoHome)
}

func TestDefaultDirsOnThisPlatform(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	appData := filepath.Join(home, "AppData")
	fakePlatform(t, home, appData)

	configDir, err := DefaultConfigDir()
	require.NoError(t, err)
	dataDir, err := DefaultDataDir()
	require.NoError(t, err)

	if runtime.GOOS == "linux" {
		assert.Equal(t, filepath.Join(home, ".config", "gamevault"), configDir)
		assert.Equal(t, filepath.Join(home, ".local", "share", "gamevault"), dataDir)
		return
	}
	assert.Equal(t, filepath.Join(appData, "gamevault"), configDir)
	assert.Equal(t, configDir, dataDir, "config and data share a root off linux")
}

func TestResolveConfigDir(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	fakePlatform(t, home, home)
	def, err := DefaultConfigDir()
	require.NoError(t, err)

	got, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, def, got, "platform default")

	t.Setenv(EnvConfigDir, "/etc/gamevault")
	got, err = ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/etc/gamevault"), got, "environment over default")

	got, err = ResolveConfigDir("/srv/conf")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/srv/conf"), got, "flag over environment")
}

func TestResolveDataDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name        string
		flag        string
		configValue string
		env         string
		want        string
	}{
		{name: "flag first", flag: "/flag", configValue: "/conf", env: "/env", want: "/flag"},
		{name: "config over environment", configValue: "/conf", env: "/env", want: "/conf"},
		{name: "environment", env: "/env", want: "/env"},
		{name: "relative config value", configValue: "vault-data", want: filepath.Join(cwd, "vault-data")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvDataDir, tt.env)

			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolveDataDirDefault(t *testing.T) {
	clearEnv(t)
	fakePlatform(t, "", "")
	_, err := ResolveDataDir("", "")
	assert.ErrorIs(t, err, errNoHome, "lookup failures are reported")

	home := t.TempDir()
	fakePlatform(t, home, home)
	want, err := DefaultDataDir()
	require.NoError(t, err)
	got, err := ResolveDataDir("", "")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveBackupDir(t *testing.T) {
	dataDir := filepath.FromSlash("/var/lib/gamevault")

	got, err := ResolveBackupDir("", "", dataDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, BackupDirName), got)

	got, err = ResolveBackupDir("", "/mnt/backup", dataDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/mnt/backup"), got)

	got, err = ResolveBackupDir("/tmp/once", "/mnt/backup", dataDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/tmp/once"), got)
}
