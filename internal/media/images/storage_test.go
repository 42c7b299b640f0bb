package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(t.TempDir(), "avatars")
	require.NoError(t, err)
	return storage
}

func TestNewStorage(t *testing.T) {
	t.Run("creates storage with valid path", func(t *testing.T) {
		tmpDir := t.TempDir()

		storage, err := NewStorage(tmpDir, "avatars")
		require.NoError(t, err)
		require.NotNil(t, storage)

		// Verify avatars directory was created.
		avatarsPath := filepath.Join(tmpDir, "avatars")
		info, err := os.Stat(avatarsPath)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error for empty base path", func(t *testing.T) {
		storage, err := NewStorage("", "avatars")
		assert.Error(t, err)
		assert.Nil(t, storage)
		assert.Contains(t, err.Error(), "base path cannot be empty")
	})

	t.Run("returns error for empty subdirectory", func(t *testing.T) {
		storage, err := NewStorage(t.TempDir(), "")
		assert.Error(t, err)
		assert.Nil(t, storage)
	})

	t.Run("creates nested directories if needed", func(t *testing.T) {
		tmpDir := t.TempDir()
		nestedPath := filepath.Join(tmpDir, "nested", "path")

		storage, err := NewStorage(nestedPath, "avatars")
		require.NoError(t, err)
		require.NotNil(t, storage)

		info, err := os.Stat(filepath.Join(nestedPath, "avatars"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestStorage_SaveAndGet(t *testing.T) {
	t.Run("round-trips image data", func(t *testing.T) {
		storage := setupTestStorage(t)
		testData := []byte("test image data")

		err := storage.Save("user-123", testData)
		require.NoError(t, err)

		got, err := storage.Get("user-123")
		require.NoError(t, err)
		assert.Equal(t, testData, got)
	})

	t.Run("rejects empty ID", func(t *testing.T) {
		storage := setupTestStorage(t)
		assert.Error(t, storage.Save("", []byte("data")))
	})

	t.Run("rejects empty data", func(t *testing.T) {
		storage := setupTestStorage(t)
		assert.Error(t, storage.Save("user-123", nil))
	})

	t.Run("get of missing image returns error", func(t *testing.T) {
		storage := setupTestStorage(t)
		_, err := storage.Get("user-missing")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "image not found")
	})

	t.Run("save overwrites existing image", func(t *testing.T) {
		storage := setupTestStorage(t)
		require.NoError(t, storage.Save("user-123", []byte("first")))
		require.NoError(t, storage.Save("user-123", []byte("second")))

		got, err := storage.Get("user-123")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})
}

func TestStorage_Exists(t *testing.T) {
	storage := setupTestStorage(t)

	assert.False(t, storage.Exists("user-123"))
	assert.False(t, storage.Exists(""))

	require.NoError(t, storage.Save("user-123", []byte("data")))
	assert.True(t, storage.Exists("user-123"))
}

func TestStorage_Delete(t *testing.T) {
	t.Run("deletes existing image", func(t *testing.T) {
		storage := setupTestStorage(t)
		require.NoError(t, storage.Save("user-123", []byte("data")))

		require.NoError(t, storage.Delete("user-123"))
		assert.False(t, storage.Exists("user-123"))
	})

	t.Run("delete of missing image is a no-op", func(t *testing.T) {
		storage := setupTestStorage(t)
		assert.NoError(t, storage.Delete("user-missing"))
	})
}

func TestStorage_Hash(t *testing.T) {
	storage := setupTestStorage(t)
	require.NoError(t, storage.Save("user-123", []byte("data")))

	first, err := storage.Hash("user-123")
	require.NoError(t, err)
	assert.Len(t, first, 64, "hash should be 64 hex characters (SHA256)")

	// Stable across reads.
	second, err := storage.Hash("user-123")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Changes when content changes.
	require.NoError(t, storage.Save("user-123", []byte("other data")))
	third, err := storage.Hash("user-123")
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}
