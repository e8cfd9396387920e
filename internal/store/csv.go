package store

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/covid-stats/internal/common"
	"github.com/i474232898/covid-stats/internal/covid"
)

// DefaultCSVPath is where the fetcher writes its snapshot.
const DefaultCSVPath = "covid_data_monthly.csv"

// Columns of the CSV snapshot, in order.
var csvHeader = []string{
	"date",
	"confirmed",
	"deaths",
	"recovered",
	"confirmed_diff",
	"deaths_diff",
	"recovered_diff",
	"last_update",
	"active",
	"active_diff",
	"fatality_rate",
	"region_iso",
	"region_name",
	"region_province",
	"region_lat",
	"region_long",
}

// CSVWriter writes fetched reports to a CSV snapshot.
type CSVWriter struct {
	filePath string
}

// NewCSVWriter creates a new CSVWriter.
func NewCSVWriter(filePath string) *CSVWriter {
	if filePath == "" {
		filePath = DefaultCSVPath
	}
	return &CSVWriter{filePath: filePath}
}

// WriteReports replaces the snapshot with reports. The file is written to a
// temporary sibling and renamed into place, so readers never observe a
// partially written snapshot.
func (w *CSVWriter) WriteReports(reports []covid.Report) error {
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create output directory", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.filePath)+".*.tmp")
	if err != nil {
		return goerr.Wrap(err, "failed to create CSV file", goerr.V("path", w.filePath))
	}
	defer os.Remove(tmp.Name())

	if err := encodeReports(tmp, reports); err != nil {
		tmp.Close()
		return goerr.Wrap(err, "failed to write CSV", goerr.V("path", w.filePath))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close CSV file", goerr.V("path", w.filePath))
	}
	if err := os.Rename(tmp.Name(), w.filePath); err != nil {
		return goerr.Wrap(err, "failed to move CSV into place", goerr.V("path", w.filePath))
	}

	log.WithFields(log.Fields{"prefix": "store", "path": w.filePath, "rows": len(reports)}).
		Info("Data saved to CSV")
	return nil
}

func encodeReports(out io.Writer, reports []covid.Report) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range reports {
		if err := writer.Write(reportRow(r)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func reportRow(r covid.Report) []string {
	recovered := ""
	if r.Recovered != nil {
		recovered = strconv.FormatInt(*r.Recovered, 10)
	}

	return []string{
		common.FormatDay(r.Date),
		strconv.FormatInt(r.Confirmed, 10),
		strconv.FormatInt(r.Deaths, 10),
		recovered,
		strconv.FormatInt(r.ConfirmedDiff, 10),
		strconv.FormatInt(r.DeathsDiff, 10),
		strconv.FormatInt(r.RecoveredDiff, 10),
		r.LastUpdate,
		strconv.FormatInt(r.Active, 10),
		strconv.FormatInt(r.ActiveDiff, 10),
		strconv.FormatFloat(r.FatalityRate, 'f', -1, 64),
		r.Region.ISO,
		r.Region.Name,
		r.Region.Province,
		r.Region.Lat,
		r.Region.Long,
	}
}

// ReadReports loads a CSV snapshot. Any malformed row fails the whole load.
func ReadReports(path string) ([]covid.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open CSV", goerr.V("path", path))
	}
	defer f.Close()

	reports, err := decodeReports(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load CSV", goerr.V("path", path))
	}
	return reports, nil
}

func decodeReports(in io.Reader) ([]covid.Report, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read CSV header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range csvHeader {
		if _, ok := cols[name]; !ok {
			return nil, goerr.New("missing CSV column", goerr.V("column", name))
		}
	}

	var reports []covid.Report
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read CSV row", goerr.V("line", line))
		}

		r, err := parseRow(rowReader{rec: rec, cols: cols})
		if err != nil {
			return nil, goerr.Wrap(err, "malformed CSV row", goerr.V("line", line))
		}
		reports = append(reports, r)
	}

	return reports, nil
}

type rowReader struct {
	rec  []string
	cols map[string]int
}

func (r rowReader) get(name string) string {
	i := r.cols[name]
	if i >= len(r.rec) {
		return ""
	}
	return r.rec[i]
}

func (r rowReader) integer(name string) (int64, error) {
	v, err := strconv.ParseInt(r.get(name), 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid integer", goerr.V("column", name))
	}
	return v, nil
}

func parseRow(row rowReader) (covid.Report, error) {
	var r covid.Report
	var err error

	if r.Date, err = common.ParseDay(row.get("date")); err != nil {
		return r, goerr.Wrap(err, "invalid date", goerr.V("value", row.get("date")))
	}

	r.Region = covid.Region{
		ISO:      row.get("region_iso"),
		Name:     row.get("region_name"),
		Province: row.get("region_province"),
		Lat:      row.get("region_lat"),
		Long:     row.get("region_long"),
	}
	if r.Region.Name == "" || r.Region.ISO == "" {
		return r, goerr.New("region without name or iso code",
			goerr.V("name", r.Region.Name),
			goerr.V("iso", r.Region.ISO))
	}

	if r.Confirmed, err = row.integer("confirmed"); err != nil {
		return r, err
	}
	if r.Deaths, err = row.integer("deaths"); err != nil {
		return r, err
	}
	if raw := row.get("recovered"); raw != "" {
		v, err := row.integer("recovered")
		if err != nil {
			return r, err
		}
		r.Recovered = &v
	}
	if r.ConfirmedDiff, err = row.integer("confirmed_diff"); err != nil {
		return r, err
	}
	if r.DeathsDiff, err = row.integer("deaths_diff"); err != nil {
		return r, err
	}
	if r.RecoveredDiff, err = row.integer("recovered_diff"); err != nil {
		return r, err
	}
	if r.Active, err = row.integer("active"); err != nil {
		return r, err
	}
	if r.ActiveDiff, err = row.integer("active_diff"); err != nil {
		return r, err
	}
	if r.FatalityRate, err = strconv.ParseFloat(row.get("fatality_rate"), 64); err != nil {
		return r, goerr.Wrap(err, "invalid number", goerr.V("column", "fatality_rate"))
	}
	r.LastUpdate = row.get("last_update")

	return r, nil
}
