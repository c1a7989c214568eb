package db

import (
	"context"
	"path/filepath"
	"testing"

	"scriptura/pkg/config"
	"scriptura/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	d, err := Open(context.Background(), config.StoreConfig{Driver: "memory"}, false)
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryDriver{}, d)
}

func TestOpenSQLiteSeeded(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "demo.db")}

	d, err := Open(ctx, cfg, true)
	require.NoError(t, err)
	defer d.Close()

	err = store.New(d).View(ctx, func(r store.Reader) error {
		list, err := r.ListTranslations(ctx)
		assert.Equal(t, []string{"BSB", "KJV"}, store.TranslationCodes(list))
		return err
	})
	assert.NoError(t, err)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "oracle"}, false)
	assert.ErrorContains(t, err, "unknown store driver")
}
