package store

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPostgresIntegration はNOTIFIER_TEST_POSTGRES_DSNが設定されている場合のみ、
// PostgreSQLのSQLStoreがStoreの契約を満たすことを検証する。
func TestPostgresIntegration(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("NOTIFIER_TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("NOTIFIER_TEST_POSTGRES_DSN が未設定のためスキップ")
	}

	runContract(t, false, func(t *testing.T) Store {
		t.Helper()
		s, err := OpenPostgres(t.Context(), dsn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		// 契約テストは空のテーブルを前提とする
		_, err = s.db.ExecContext(t.Context(), "TRUNCATE notifications")
		require.NoError(t, err)
		return s
	})
}
