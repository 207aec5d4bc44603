package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ngshiheng/passportindexdb/config"
	"github.com/ngshiheng/passportindexdb/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	content := "hello storage"
	key := "exports/file.xlsx"
	size := int64(len(content))

	t.Run("UploadReader creates file", func(t *testing.T) {
		result, err := storage.UploadReader(ctx, strings.NewReader(content), key, ExportContentType, size)
		require.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, size, result.FileSize)
		assert.Equal(t, ExportContentType, result.MimeType)
		assert.Equal(t, filepath.Join(tempDir, key), result.URL)

		got, err := os.ReadFile(filepath.Join(tempDir, key))
		require.NoError(t, err)
		assert.Equal(t, content, string(got))
	})

	t.Run("UploadReader overwrites an existing key", func(t *testing.T) {
		_, err := storage.UploadReader(ctx, strings.NewReader("v2"), key, ExportContentType, 2)
		require.NoError(t, err)

		got, err := os.ReadFile(filepath.Join(tempDir, key))
		require.NoError(t, err)
		assert.Equal(t, "v2", string(got))
	})

	t.Run("GetPublicURL returns local path", func(t *testing.T) {
		assert.Equal(t, filepath.Join(tempDir, key), storage.GetPublicURL(key))
	})
}

func TestNewStorageWithoutR2UsesLocal(t *testing.T) {
	cfg := &config.Config{ExportDir: t.TempDir()}

	storage := NewStorage(context.Background(), cfg, logger.Nop())

	local, ok := storage.(*LocalStorage)
	require.True(t, ok)
	assert.Equal(t, cfg.ExportDir, local.baseDir)
}

func TestR2StoragePublicURL(t *testing.T) {
	r2 := &R2Storage{publicURL: "https://exports.example.com/"}
	assert.Equal(t, "https://exports.example.com/exports/a.xlsx", r2.GetPublicURL("exports/a.xlsx"))

	r2.publicURL = ""
	assert.Empty(t, r2.GetPublicURL("exports/a.xlsx"))
}

func TestExportKey(t *testing.T) {
	at := time.Date(2024, 6, 1, 11, 30, 5, 0, time.FixedZone("SGT", 8*3600))
	assert.Equal(t, "exports/passportindex-20240601-033005.xlsx", ExportKey(at))
}
