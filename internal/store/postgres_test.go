package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostgresWriter(t *testing.T) {
	connStr := os.Getenv("TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	w, err := NewPostgresWriter(connStr)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.CreateTable())
	require.NoError(t, w.WriteReports(sampleReports()))
	// Upserting the same rows again is not a conflict.
	require.NoError(t, w.WriteReports(sampleReports()))

	var n int
	require.NoError(t, w.db.QueryRow(
		`SELECT COUNT(*) FROM covid_reports WHERE report_date = '2020-04-01' AND region_iso IN ('KOR', 'AUS')`,
	).Scan(&n))
	require.Equal(t, 2, n)
}
