package auth

import (
	"path/filepath"
	"testing"

	"blog-service/database"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dbConn, err := database.InitializeDatabase(t.Context(), filepath.Join(t.TempDir(), "blog.sqlite"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbConn.Close() })
	return dbConn
}
