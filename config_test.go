package huectl

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, content string) *ConfigStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".huerc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	store, err := NewConfigStore(path)
	require.NoError(t, err)
	return store
}

func TestConfigStore_LoadEmptyUsesDefaults(t *testing.T) {
	for _, content := range []string{"", "\n  \n"} {
		cfg, err := newStore(t, content).Load()
		require.NoError(t, err)
		assert.Equal(t, DefaultBridgeURL, cfg.BridgeURL)
		assert.Equal(t, DefaultUser, cfg.User)
		assert.True(t, cfg.Defaulted)
		assert.True(t, cfg.HasBridgeURL())
		assert.True(t, cfg.HasUser())
	}
}

func TestConfigStore_Load(t *testing.T) {
	cfg, err := newStore(t, "bridge_url: http://10.0.0.2/\nuser: abc\n").Load()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2/", cfg.BridgeURL)
	assert.Equal(t, "abc", cfg.User)
	assert.False(t, cfg.Defaulted)

	cfg, err = newStore(t, "bridge_url: http://10.0.0.2/\n").Load()
	require.NoError(t, err)
	assert.True(t, cfg.HasBridgeURL())
	assert.False(t, cfg.HasUser())
}

func TestConfigStore_LoadMissingFile(t *testing.T) {
	store, err := NewConfigStore(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	_, err = store.Load()
	require.Error(t, err)
	var accessErr *ConfigAccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, store.Path(), accessErr.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestConfigStore_LoadMalformed(t *testing.T) {
	_, err := newStore(t, "bridge_url: [unterminated\n").Load()
	assert.Error(t, err)
}

func TestConfigStore_SaveRoundTrip(t *testing.T) {
	store := newStore(t, "bridge_url: http://10.0.0.2/\ncomment: keep me\n")

	require.NoError(t, store.Save(FieldUser, "new-user"))

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new-user", cfg.User)
	assert.Equal(t, "http://10.0.0.2/", cfg.BridgeURL)

	require.NoError(t, store.Save(FieldBridgeURL, "http://10.0.0.3/"))
	cfg, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new-user", cfg.User)
	assert.Equal(t, "http://10.0.0.3/", cfg.BridgeURL)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "comment: keep me")
}

func TestConfigStore_SaveCreatesFile(t *testing.T) {
	store, err := NewConfigStore(filepath.Join(t.TempDir(), ".huerc"))
	require.NoError(t, err)

	cfg := &Configuration{}
	require.NoError(t, store.SaveTo(cfg, FieldBridgeURL, "http://bridge/"))
	assert.Equal(t, "http://bridge/", cfg.BridgeURL)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://bridge/", loaded.BridgeURL)
	assert.False(t, loaded.HasUser())
}

func TestConfigStore_SaveIntoEmptyFile(t *testing.T) {
	store := newStore(t, "")
	require.NoError(t, store.Save(FieldUser, "u"))

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "u", cfg.User)
	assert.False(t, cfg.Defaulted)
}

func TestNewConfigStore_Default(t *testing.T) {
	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigPath, store.Path())
}
