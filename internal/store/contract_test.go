package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/keygate/internal/credential"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepository runs the behaviour every credential.Repository must share.
// Keys are prefixed so runs against shared databases do not collide.
func testRepository(t *testing.T, repo credential.Repository, prefix string) {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("insert then get returns allowed record", func(t *testing.T) {
		key := credential.APIKey(prefix + "insert-get")

		inserted, err := repo.Insert(ctx, &credential.Record{Key: key, CreatedAt: now})

		require.NoError(t, err)
		assert.True(t, inserted)

		record, err := repo.Get(ctx, key)

		require.NoError(t, err)
		assert.Equal(t, key, record.Key)
		assert.True(t, record.CreatedAt.Equal(now))
		assert.True(t, record.Allowed())
	})

	t.Run("insert of existing key is rejected", func(t *testing.T) {
		key := credential.APIKey(prefix + "duplicate")

		_, err := repo.Insert(ctx, &credential.Record{Key: key, CreatedAt: now})
		require.NoError(t, err)

		inserted, err := repo.Insert(ctx, &credential.Record{Key: key, CreatedAt: now.Add(time.Hour)})

		require.NoError(t, err)
		assert.False(t, inserted)

		record, _ := repo.Get(ctx, key)
		assert.True(t, record.CreatedAt.Equal(now), "first record must be preserved")
	})

	t.Run("get of unknown key returns ErrNotFound", func(t *testing.T) {
		record, err := repo.Get(ctx, credential.APIKey(prefix+"unknown"))

		assert.Nil(t, record)
		assert.ErrorIs(t, err, credential.ErrNotFound)
	})

	t.Run("lookup is exact match", func(t *testing.T) {
		key := credential.APIKey(prefix + "Exact")

		_, err := repo.Insert(ctx, &credential.Record{Key: key, CreatedAt: now})
		require.NoError(t, err)

		_, err = repo.Get(ctx, credential.APIKey(prefix+"exact"))
		require.ErrorIs(t, err, credential.ErrNotFound)

		_, err = repo.Get(ctx, key+" ")
		assert.ErrorIs(t, err, credential.ErrNotFound)
	})

	t.Run("revoke is visible to the next get", func(t *testing.T) {
		key := credential.APIKey(prefix + "revoke")

		_, err := repo.Insert(ctx, &credential.Record{Key: key, CreatedAt: now})
		require.NoError(t, err)

		require.NoError(t, repo.Revoke(ctx, key, now.Add(time.Minute)))

		record, err := repo.Get(ctx, key)

		require.NoError(t, err)
		assert.False(t, record.Allowed())
		require.NotNil(t, record.RevokedAt)
		assert.True(t, record.RevokedAt.Equal(now.Add(time.Minute)))
	})

	t.Run("second revoke keeps the first revocation time", func(t *testing.T) {
		key := credential.APIKey(prefix + "revoke-twice")

		_, err := repo.Insert(ctx, &credential.Record{Key: key, CreatedAt: now})
		require.NoError(t, err)

		require.NoError(t, repo.Revoke(ctx, key, now.Add(time.Minute)))
		require.NoError(t, repo.Revoke(ctx, key, now.Add(time.Hour)))

		record, err := repo.Get(ctx, key)

		require.NoError(t, err)
		assert.True(t, record.RevokedAt.Equal(now.Add(time.Minute)))
	})

	t.Run("revoked key cannot be issued again", func(t *testing.T) {
		key := credential.APIKey(prefix + "revoked-reinsert")

		_, err := repo.Insert(ctx, &credential.Record{Key: key, CreatedAt: now})
		require.NoError(t, err)
		require.NoError(t, repo.Revoke(ctx, key, now))

		inserted, err := repo.Insert(ctx, &credential.Record{Key: key, CreatedAt: now})

		require.NoError(t, err)
		assert.False(t, inserted)

		record, _ := repo.Get(ctx, key)
		assert.False(t, record.Allowed())
	})

	t.Run("revoke of unknown key succeeds without creating it", func(t *testing.T) {
		key := credential.APIKey(prefix + "never-issued")

		require.NoError(t, repo.Revoke(ctx, key, now))

		_, err := repo.Get(ctx, key)
		assert.ErrorIs(t, err, credential.ErrNotFound)
	})
}
