package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	t.Parallel()

	dbConn := newTestDB(t)
	ctx := t.Context()

	id, err := CreateUser(ctx, dbConn, "alice", "hash-a")
	require.NoError(t, err)
	assert.Positive(t, id)

	t.Run("FindUserByID", func(t *testing.T) {
		user, err := FindUserByID(ctx, dbConn, id)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "hash-a", user.Password)

		_, err = FindUserByID(ctx, dbConn, id+100)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("FindUserByUsername", func(t *testing.T) {
		user, err := FindUserByUsername(ctx, dbConn, "alice")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)

		// matching is exact
		_, err = FindUserByUsername(ctx, dbConn, "Alice")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		taken, err := UsernameTaken(ctx, dbConn, "alice")
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = UsernameTaken(ctx, dbConn, "nobody")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("duplicate insert", func(t *testing.T) {
		_, err := CreateUser(ctx, dbConn, "alice", "hash-b")
		require.ErrorIs(t, err, ErrAlreadyExists)

		var count int
		err = dbConn.GetContext(ctx, &count, "SELECT COUNT(*) FROM user WHERE username = ?", "alice")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("DeleteUser", func(t *testing.T) {
		otherID, err := CreateUser(ctx, dbConn, "carol", "hash-c")
		require.NoError(t, err)

		require.NoError(t, DeleteUser(ctx, dbConn, otherID))
		_, err = FindUserByID(ctx, dbConn, otherID)
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, DeleteUser(ctx, dbConn, otherID))
	})
}
