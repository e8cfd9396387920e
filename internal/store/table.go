package store

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/i474232898/covid-stats/internal/covid"
)

// Table is a lazily loaded, read-only, process-wide copy of the CSV
// snapshot. The file is read at most once; later changes to it require a
// restart. Safe for concurrent use.
type Table struct {
	path string
	load func(path string) ([]covid.Report, error)

	once    sync.Once
	reports []covid.Report
	err     error
}

// NewTable creates a Table backed by the CSV file at path.
func NewTable(path string) *Table {
	if path == "" {
		path = DefaultCSVPath
	}
	return &Table{
		path: path,
		load: ReadReports,
	}
}

// Reports returns the loaded rows, reading the file on first use. A load
// error is remembered and returned on every call. Callers must not modify
// the returned slice.
func (t *Table) Reports() ([]covid.Report, error) {
	t.once.Do(func() {
		start := time.Now()
		t.reports, t.err = t.load(t.path)
		if t.err != nil {
			return
		}
		log.WithFields(log.Fields{
			"prefix":  "store",
			"path":    t.path,
			"rows":    len(t.reports),
			"elapsed": time.Since(start),
		}).Info("covid reports loaded")
	})
	return t.reports, t.err
}
