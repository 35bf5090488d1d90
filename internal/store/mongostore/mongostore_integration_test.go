//go:build integration

package mongostore

import (
	"context"
	"testing"
	"time"

	"bookapi/internal/book"
	"bookapi/internal/store"
	"bookapi/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupMongo(t *testing.T) *store.Stores {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := Connect(ctx, uri, "bookapi_test")
	require.NoError(t, err)
	require.NoError(t, EnsureIndexes(ctx, db))

	stores := Open(db)
	t.Cleanup(func() { _ = stores.Close(context.Background()) })
	return stores
}

func TestMongoStores(t *testing.T) {
	stores := setupMongo(t)
	ctx := context.Background()
	require.NoError(t, stores.Ping(ctx))

	t.Run("users", func(t *testing.T) {
		u := &user.User{Username: "ana", Email: "ana@example.com", PasswordHash: "hash"}
		require.NoError(t, stores.Users.CreateUser(ctx, u))
		assert.Len(t, u.ID, 24)

		got, err := stores.Users.FindUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "hash", got.PasswordHash)

		err = stores.Users.CreateUser(ctx, &user.User{Username: "b", Email: "ana@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, store.ErrDuplicate)

		_, err = stores.Users.FindUserByID(ctx, "not-an-object-id")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("books", func(t *testing.T) {
		dune := &book.Book{Title: "Dune", Author: "Herbert", PublicationYear: 1965}
		require.NoError(t, stores.Books.CreateBook(ctx, dune))

		author := "Herbert"
		got, err := stores.Books.ListBooks(ctx, book.Filter{Author: &author})
		require.NoError(t, err)
		assert.Equal(t, []book.Book{*dune}, got)

		title := "Dune Messiah"
		updated, err := stores.Books.UpdateBook(ctx, dune.ID, book.Patch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", updated.Title)
		assert.Equal(t, 1965, updated.PublicationYear)

		_, err = stores.Books.UpdateBook(ctx, "000000000000000000000000", book.Patch{Title: &title})
		assert.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, stores.Books.DeleteBook(ctx, dune.ID))
		require.NoError(t, stores.Books.DeleteBook(ctx, "bogus"))
		_, err = stores.Books.FindBookByID(ctx, dune.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("denylist", func(t *testing.T) {
		now := time.Now()
		require.NoError(t, stores.Denylist.Add(ctx, "old", now.Add(-time.Hour)))
		require.NoError(t, stores.Denylist.Add(ctx, "new", now.Add(time.Hour)))
		assert.ErrorIs(t, stores.Denylist.Add(ctx, "new", now), store.ErrDuplicate)

		ok, err := stores.Denylist.Contains(ctx, "new")
		require.NoError(t, err)
		assert.True(t, ok)

		n, err := stores.Denylist.PurgeExpired(ctx, now)
		require.NoError(t, err)
		// The TTL monitor may already have removed "old".
		assert.LessOrEqual(t, n, int64(1))

		ok, err = stores.Denylist.Contains(ctx, "old")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
