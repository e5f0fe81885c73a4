package gate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("testdata/confgate.yaml")
	require.NoError(t, err)

	assert.Equal(t, "./testdata/schemas", cfg.SchemaDir)
	assert.Equal(t, "clusterman", cfg.RootDocument)
	assert.Equal(t, []string{"./testdata/configs"}, cfg.ConfigPaths)
	assert.False(t, cfg.ClosedObjects)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce())
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confgate.yaml")
	content := "schema_dir: ./schemas\nroot_document: clusterman\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.ConfigPaths)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce())
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confgate.yaml")
	content := "schema_dir: ./schemas\nroot_document: clusterman\nschema_dirs: ./more\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema_dirs")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read gate config")
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.RootDocument = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid gate config")
}

func TestConfig_Validate_MetricsAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Watch.MetricsAddr = ":9102"
	require.NoError(t, cfg.Validate())

	cfg.Watch.MetricsAddr = "not a listen address"
	require.Error(t, cfg.Validate())
}

func TestWatchConfig_Debounce(t *testing.T) {
	w := WatchConfig{}
	assert.Equal(t, 500*time.Millisecond, w.Debounce())

	w.DebounceMillis = 50
	assert.Equal(t, 50*time.Millisecond, w.Debounce())
}
