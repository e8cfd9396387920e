package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/covid-stats/internal/covid"
)

func int64p(v int64) *int64 { return &v }

func sampleReports() []covid.Report {
	return []covid.Report{
		{
			Date:          time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC),
			Region:        covid.Region{ISO: "KOR", Name: "Korea, South", Lat: "35.9078", Long: "127.7669"},
			Confirmed:     9887,
			Deaths:        165,
			Recovered:     int64p(5567),
			ConfirmedDiff: 101,
			DeathsDiff:    3,
			RecoveredDiff: 159,
			Active:        4155,
			ActiveDiff:    -61,
			FatalityRate:  0.0167,
			LastUpdate:    "2020-04-01 21:58:34",
		},
		{
			Date:      time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC),
			Region:    covid.Region{ISO: "AUS", Name: "Australia", Province: "New South Wales"},
			Confirmed: 2032,
			Deaths:    8,
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "covid.csv")
	require.NoError(t, NewCSVWriter(path).WriteReports(sampleReports()))

	got, err := ReadReports(path)
	require.NoError(t, err)
	assert.Equal(t, sampleReports(), got)

	// Every row keeps its country name and iso code.
	for i, r := range got {
		assert.Equal(t, sampleReports()[i].Country(), r.Country())
		assert.Equal(t, sampleReports()[i].ISO(), r.ISO())
	}
}

func TestCSVWriterOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covid.csv")
	w := NewCSVWriter(path)

	require.NoError(t, w.WriteReports(sampleReports()))
	require.NoError(t, w.WriteReports(sampleReports()[:1]))

	got, err := ReadReports(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// No temporary files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCSVWriterEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covid.csv")
	require.NoError(t, NewCSVWriter(path).WriteReports(nil))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(csvHeader, ",")+"\n", string(content))

	got, err := ReadReports(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "covid.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadReportsRejectsMalformedRows(t *testing.T) {
	header := strings.Join(csvHeader, ",") + "\n"

	cases := map[string]string{
		"missing region": header + "2020-04-01,1,0,,0,0,0,,1,0,0,,,,,\n",
		"bad date":       header + "04/01/2020,1,0,,0,0,0,,1,0,0,DEU,Germany,,,\n",
		"bad count":      header + "2020-04-01,many,0,,0,0,0,,1,0,0,DEU,Germany,,,\n",
		"missing column": "date,confirmed\n2020-04-01,1\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadReports(writeFile(t, content))
			assert.Error(t, err)
		})
	}
}

func TestReadReportsMissingFile(t *testing.T) {
	_, err := ReadReports(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
