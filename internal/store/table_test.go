package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/covid-stats/internal/covid"
)

func TestTableLoadsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covid.csv")
	require.NoError(t, NewCSVWriter(path).WriteReports(sampleReports()))

	table := NewTable(path)
	var loads int
	var mu sync.Mutex
	table.load = func(p string) ([]covid.Report, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		return ReadReports(p)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports, err := table.Reports()
			assert.NoError(t, err)
			assert.Len(t, reports, 2)
		}()
	}
	wg.Wait()

	// Rewriting the file does not change what the table serves.
	require.NoError(t, NewCSVWriter(path).WriteReports(nil))
	reports, err := table.Reports()
	require.NoError(t, err)
	assert.Len(t, reports, 2)
	assert.Equal(t, 1, loads)
}

func TestTableRemembersLoadError(t *testing.T) {
	table := NewTable("unused.csv")
	var loads int
	table.load = func(string) ([]covid.Report, error) {
		loads++
		return nil, errors.New("boom")
	}

	_, err := table.Reports()
	assert.Error(t, err)
	_, err = table.Reports()
	assert.Error(t, err)
	assert.Equal(t, 1, loads)
}
