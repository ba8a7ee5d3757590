// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage(t *testing.T) {
	root := t.TempDir()
	storage, err := NewLocalFileStorage(root, "https://hub.example.edu/files/")
	require.NoError(t, err)

	t.Run("SaveAndRead", func(t *testing.T) {
		err := storage.Save("a.txt", []byte("hello"))
		require.NoError(t, err)

		data, err := storage.Read("a.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
		assert.True(t, storage.Exists("a.txt"))
	})

	t.Run("NeverOverwrites", func(t *testing.T) {
		require.NoError(t, storage.Save("b.txt", []byte("first")))

		err := storage.Save("b.txt", []byte("second"))
		assert.Error(t, err)

		data, err := storage.Read("b.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("first"), data)
	})

	t.Run("RejectsPathTraversal", func(t *testing.T) {
		assert.Error(t, storage.Save("../escape.txt", []byte("x")))
		assert.Error(t, storage.Save("/etc/passwd", []byte("x")))
		assert.False(t, storage.Exists("../escape.txt"))
	})

	t.Run("PublicURL", func(t *testing.T) {
		url := storage.PublicURL("qrcode-abc.png")
		assert.Equal(t, "https://hub.example.edu/files/qrcode-abc.png", url)
	})

	t.Run("MissingFile", func(t *testing.T) {
		assert.False(t, storage.Exists("missing.txt"))
		_, err := storage.Read("missing.txt")
		assert.Error(t, err)
	})
}

func TestNewLocalFileStorageCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "storage")
	storage, err := NewLocalFileStorage(root, "http://localhost:8080/files")
	require.NoError(t, err)

	require.NoError(t, storage.Save("c.txt", []byte("data")))
	assert.True(t, storage.Exists("c.txt"))
}
