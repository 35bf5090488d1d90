package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookapi/internal/book"
	"bookapi/internal/config"
	"bookapi/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpenSQLiteMemory(t *testing.T) {
	ctx := context.Background()
	stores, err := Open(ctx, config.Config{DatabaseURL: "sqlite://:memory:"}, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close(context.Background()) })

	require.NoError(t, stores.Ping(ctx))

	b := &book.Book{Title: "Dune", Author: "Herbert", PublicationYear: 1965}
	require.NoError(t, stores.Books.CreateBook(ctx, b))

	all, err := stores.Books.ListBooks(ctx, book.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, stores.Denylist.Add(ctx, "tok", time.Now().Add(time.Hour)))
	ok, err := stores.Denylist.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), config.Config{DatabaseURL: "mysql://localhost/db"}, logger.Discard())
	assert.ErrorContains(t, err, "unsupported")

	_, err = Open(context.Background(), config.Config{DatabaseURL: "localhost:27017"}, logger.Discard())
	assert.ErrorContains(t, err, "no scheme")
}

func TestIsMemory(t *testing.T) {
	assert.True(t, isMemory(":memory:"))
	assert.True(t, isMemory("file::memory:?cache=shared"))
	assert.True(t, isMemory("file:books?mode=memory&cache=shared"))
	assert.False(t, isMemory("/var/lib/bookapi.db"))
}

func TestOpenClosesDatabaseWhenMigrationFails(t *testing.T) {
	var migrated *gorm.DB
	orig := autoMigrate
	autoMigrate = func(gdb *gorm.DB) error {
		migrated = gdb
		return errors.New("no such privilege")
	}
	t.Cleanup(func() { autoMigrate = orig })

	_, err := Open(context.Background(), config.Config{DatabaseURL: "sqlite://:memory:"}, logger.Discard())
	require.ErrorContains(t, err, "auto migrate")

	require.NotNil(t, migrated)
	sqlDB, err := migrated.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}
