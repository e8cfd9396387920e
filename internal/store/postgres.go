package store

import (
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	log "github.com/sirupsen/logrus"

	_ "github.com/lib/pq"

	"github.com/i474232898/covid-stats/internal/covid"
)

// PostgresWriter mirrors fetched reports into PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens and pings the database.
func NewPostgresWriter(connStr string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open DB")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping DB")
	}

	log.WithField("prefix", "store").Info("Connected to PostgreSQL successfully")
	return &PostgresWriter{db: db}, nil
}

// CreateTable creates the covid_reports table if it doesn't exist.
func (w *PostgresWriter) CreateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS covid_reports (
		report_date     DATE         NOT NULL,
		region_iso      VARCHAR(3)   NOT NULL,
		region_name     TEXT         NOT NULL,
		region_province TEXT         NOT NULL DEFAULT '',
		confirmed       BIGINT       NOT NULL DEFAULT 0,
		deaths          BIGINT       NOT NULL DEFAULT 0,
		recovered       BIGINT,
		active          BIGINT       NOT NULL DEFAULT 0,
		fatality_rate   DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_update     TEXT,
		fetched_at      TIMESTAMP    NOT NULL DEFAULT NOW(),
		PRIMARY KEY (report_date, region_iso, region_province)
	);

	CREATE INDEX IF NOT EXISTS idx_covid_reports_name ON covid_reports (region_name);
	`
	if _, err := w.db.Exec(query); err != nil {
		return goerr.Wrap(err, "failed to create table")
	}
	log.WithField("prefix", "store").Info("Table 'covid_reports' is ready")
	return nil
}

const upsertReport = `
	INSERT INTO covid_reports (report_date, region_iso, region_name, region_province,
		confirmed, deaths, recovered, active, fatality_rate, last_update)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (report_date, region_iso, region_province) DO UPDATE SET
		region_name   = EXCLUDED.region_name,
		confirmed     = EXCLUDED.confirmed,
		deaths        = EXCLUDED.deaths,
		recovered     = EXCLUDED.recovered,
		active        = EXCLUDED.active,
		fatality_rate = EXCLUDED.fatality_rate,
		last_update   = EXCLUDED.last_update,
		fetched_at    = NOW()
`

// WriteReports upserts reports in a single transaction.
func (w *PostgresWriter) WriteReports(reports []covid.Report) (err error) {
	if len(reports) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(upsertReport)
	if err != nil {
		return goerr.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	for _, r := range reports {
		if _, err = stmt.Exec(reportArgs(r)...); err != nil {
			return goerr.Wrap(err, "failed to upsert report",
				goerr.V("date", r.Date),
				goerr.V("iso", r.ISO()),
				goerr.V("province", r.Region.Province))
		}
	}

	if err = tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit transaction")
	}

	log.WithFields(log.Fields{"prefix": "store", "rows": len(reports)}).Info("reports upserted into PostgreSQL")
	return nil
}

func reportArgs(r covid.Report) []interface{} {
	var recovered sql.NullInt64
	if r.Recovered != nil {
		recovered = sql.NullInt64{Int64: *r.Recovered, Valid: true}
	}
	return []interface{}{
		r.Date,
		r.Region.ISO,
		r.Region.Name,
		r.Region.Province,
		r.Confirmed,
		r.Deaths,
		recovered,
		r.Active,
		r.FatalityRate,
		r.LastUpdate,
	}
}

// Close closes the database connection.
func (w *PostgresWriter) Close() {
	if w.db != nil {
		_ = w.db.Close()
	}
}
