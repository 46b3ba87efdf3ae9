package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestLocalCoverStorage ensures covers land under the covers prefix and
// can be removed again.
func TestLocalCoverStorage(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalCoverStorage(zap.NewNop(), root)
	require.NoError(t, err)

	t.Run("save returns the logical path", func(t *testing.T) {
		logical, err := store.Save("cover.png", strings.NewReader("fake image bytes"))
		require.NoError(t, err)
		assert.Equal(t, "covers/cover.png", logical)

		data, err := os.ReadFile(filepath.Join(root, "covers", "cover.png"))
		require.NoError(t, err)
		assert.Equal(t, "fake image bytes", string(data))
	})

	t.Run("save strips any directory part", func(t *testing.T) {
		logical, err := store.Save("../../etc/evil.png", strings.NewReader("x"))
		require.NoError(t, err)
		assert.Equal(t, "covers/evil.png", logical)
		_, err = os.Stat(filepath.Join(root, "covers", "evil.png"))
		assert.NoError(t, err)
	})

	t.Run("remove deletes the stored file", func(t *testing.T) {
		require.NoError(t, store.Remove("covers/cover.png"))
		_, err := os.Stat(filepath.Join(root, "covers", "cover.png"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("remove tolerates missing files", func(t *testing.T) {
		assert.NoError(t, store.Remove("covers/never-there.png"))
		assert.NoError(t, store.Remove(""))
	})
}
