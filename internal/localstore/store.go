// Package localstore implements the embedded per-worker SQLite database that
// holds the link queue, the record table, and month progress tracking.
package localstore

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bevalc-intelligence/cola-engine/internal/record"
	coreerror "github.com/bevalc-intelligence/cola-engine/foundation/core/error"
	"github.com/bevalc-intelligence/cola-engine/foundation/utils/filex"
)

// Store is the embedded SQLite store for one acquisition worker, or the
// consolidated store produced by a merge across workers.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS links (
	ttb_id      TEXT PRIMARY KEY,
	detail_url  TEXT NOT NULL,
	year        INTEGER NOT NULL,
	month       INTEGER NOT NULL,
	scraped     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS records (
	ttb_id                 TEXT PRIMARY KEY,
	serial_number          TEXT,
	vendor_code            TEXT,
	status                 TEXT,
	class_type_code        TEXT,
	origin_code            TEXT,
	type_of_application    TEXT,
	brand_name             TEXT,
	fanciful_name          TEXT,
	qualifications         TEXT,
	formula                TEXT,
	for_sale_in            TEXT,
	total_bottle_capacity  TEXT,
	grape_varietal         TEXT,
	wine_vintage           TEXT,
	appellation            TEXT,
	alcohol_content        TEXT,
	ph_level               TEXT,
	company_name           TEXT,
	plant_registry         TEXT,
	street                 TEXT,
	state                  TEXT,
	contact_person         TEXT,
	phone_number           TEXT,
	approval_date          TEXT,
	year                   INTEGER,
	month                  INTEGER,
	day                    INTEGER,
	signal                 TEXT,
	refile_count           INTEGER NOT NULL DEFAULT 0,
	category               TEXT
);

CREATE TABLE IF NOT EXISTS month_progress (
	year             INTEGER NOT NULL,
	month            INTEGER NOT NULL,
	expected_links   INTEGER NOT NULL DEFAULT 0,
	collected_links  INTEGER NOT NULL DEFAULT 0,
	links_verified   INTEGER NOT NULL DEFAULT 0,
	scraped_details  INTEGER NOT NULL DEFAULT 0,
	details_verified INTEGER NOT NULL DEFAULT 0,
	last_error       TEXT,
	PRIMARY KEY (year, month)
);

CREATE INDEX IF NOT EXISTS idx_links_year_month ON links(year, month);
CREATE INDEX IF NOT EXISTS idx_links_year_month_scraped ON links(year, month, scraped);
CREATE INDEX IF NOT EXISTS idx_records_approval_date ON records(approval_date);
CREATE INDEX IF NOT EXISTS idx_records_ttb_id ON records(ttb_id);
`

// Open opens (creating if necessary) the SQLite database at path, enabling
// WAL journaling for concurrent read access during long scrape runs.
func Open(path string) (*Store, error) {
	if dir := filex.Dir(path); dir != "." {
		if err := filex.MkdirAll(dir, 0o755); err != nil {
			return nil, coreerror.Wrap(err, "failed to create local store directory").
				WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.Open")
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to open local store").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.Open").WithDetail("path", path)
	}

	s := &Store{db: db, path: path}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, coreerror.Wrap(err, "failed to initialize local store schema").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.Open")
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the database file.
func (s *Store) Path() string { return s.path }

// DB exposes the raw handle for components (Merge, Sync) that need direct
// multi-row iteration outside the convenience methods below.
func (s *Store) DB() *sql.DB { return s.db }

// InsertLinks inserts links, deduplicated by ttb_id. Returns the number of
// rows actually inserted; pre-existing keys are ignored, not overwritten,
// which is what makes link collection idempotent across resumed runs.
func (s *Store) InsertLinks(ctx context.Context, links []record.Link) (inserted int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, coreerror.Wrap(err, "failed to begin link insert transaction").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.InsertLinks")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO links (ttb_id, detail_url, year, month, scraped) VALUES (?, ?, ?, ?, 0)`)
	if err != nil {
		return 0, coreerror.Wrap(err, "failed to prepare link insert").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.InsertLinks")
	}
	defer stmt.Close()

	for _, l := range links {
		res, err := stmt.ExecContext(ctx, l.TTBID, l.DetailURL, l.Year, l.Month)
		if err != nil {
			return inserted, coreerror.Wrap(err, "failed to insert link").
				WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.InsertLinks").WithDetail("ttb_id", l.TTBID)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, coreerror.Wrap(err, "failed to commit link insert").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.InsertLinks")
	}
	return inserted, nil
}

// CountLinks returns the number of distinct links for (year, month).
func (s *Store) CountLinks(ctx context.Context, year, month int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links WHERE year = ? AND month = ?`, year, month).Scan(&n)
	if err != nil {
		return 0, coreerror.Wrap(err, "failed to count links").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.CountLinks")
	}
	return n, nil
}

// UnscrapedLinks returns links for (year, month) with scraped = false.
func (s *Store) UnscrapedLinks(ctx context.Context, year, month int) ([]record.Link, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ttb_id, detail_url, year, month, scraped FROM links WHERE year = ? AND month = ? AND scraped = 0`,
		year, month)
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to query unscraped links").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.UnscrapedLinks")
	}
	defer rows.Close()

	var out []record.Link
	for rows.Next() {
		var l record.Link
		var scraped int
		if err := rows.Scan(&l.TTBID, &l.DetailURL, &l.Year, &l.Month, &scraped); err != nil {
			return nil, coreerror.Wrap(err, "failed to scan link row").
				WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.UnscrapedLinks")
		}
		l.Scraped = scraped != 0
		out = append(out, l)
	}
	return out, rows.Err()
}

// AllLinks returns every link row in the store, for merge consumers.
func (s *Store) AllLinks(ctx context.Context) ([]record.Link, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ttb_id, detail_url, year, month, scraped FROM links`)
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to query all links").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.AllLinks")
	}
	defer rows.Close()

	var out []record.Link
	for rows.Next() {
		var l record.Link
		var scraped int
		if err := rows.Scan(&l.TTBID, &l.DetailURL, &l.Year, &l.Month, &scraped); err != nil {
			return nil, coreerror.Wrap(err, "failed to scan link row").
				WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.AllLinks")
		}
		l.Scraped = scraped != 0
		out = append(out, l)
	}
	return out, rows.Err()
}

// ReconcileScrapedFlags marks as scraped any link whose record already
// exists, so a consolidated store never re-queues a detail page some worker
// already captured. Returns the number of links updated.
func (s *Store) ReconcileScrapedFlags(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE links SET scraped = 1 WHERE scraped = 0 AND ttb_id IN (SELECT ttb_id FROM records)`)
	if err != nil {
		return 0, coreerror.Wrap(err, "failed to reconcile scraped flags").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.ReconcileScrapedFlags")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// UpsertRecordAndMarkScraped inserts or replaces a detail record and flips
// the owning link's scraped flag in the same transaction, so a cancelled
// run never leaves a link marked scraped without its record.
func (s *Store) UpsertRecordAndMarkScraped(ctx context.Context, r *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return coreerror.Wrap(err, "failed to begin detail persist transaction").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.UpsertRecordAndMarkScraped")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO records (
			ttb_id, serial_number, vendor_code, status, class_type_code, origin_code,
			type_of_application, brand_name, fanciful_name, qualifications, formula,
			for_sale_in, total_bottle_capacity, grape_varietal, wine_vintage, appellation,
			alcohol_content, ph_level, company_name, plant_registry, street, state,
			contact_person, phone_number, approval_date, year, month, day, signal,
			refile_count, category
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.TTBID, r.SerialNumber, r.VendorCode, r.Status, r.ClassTypeCode, r.OriginCode,
		r.TypeOfApplication, r.BrandName, r.FancifulName, r.Qualifications, r.Formula,
		r.ForSaleIn, r.TotalBottleCapacity, r.GrapeVarietal, r.WineVintage, r.Appellation,
		r.AlcoholContent, r.PHLevel, r.CompanyName, r.PlantRegistry, r.Street, r.State,
		r.ContactPerson, r.PhoneNumber, r.ApprovalDate, nullableInt(r.Year), nullableInt(r.Month), nullableInt(r.Day),
		string(r.Signal), r.RefileCount, r.Category,
	); err != nil {
		return coreerror.Wrap(err, "failed to upsert record").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.UpsertRecordAndMarkScraped").WithDetail("ttb_id", r.TTBID)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE links SET scraped = 1 WHERE ttb_id = ?`, r.TTBID); err != nil {
		return coreerror.Wrap(err, "failed to mark link scraped").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.UpsertRecordAndMarkScraped").WithDetail("ttb_id", r.TTBID)
	}

	return tx.Commit()
}

// CountRecords returns the number of records for (year, month).
func (s *Store) CountRecords(ctx context.Context, year, month int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE year = ? AND month = ?`, year, month).Scan(&n)
	if err != nil {
		return 0, coreerror.Wrap(err, "failed to count records").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.CountRecords")
	}
	return n, nil
}

// AllRecords streams every record in the store, for Merge/Sync consumers.
func (s *Store) AllRecords(ctx context.Context) ([]*record.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		ttb_id, serial_number, vendor_code, status, class_type_code, origin_code,
		type_of_application, brand_name, fanciful_name, qualifications, formula,
		for_sale_in, total_bottle_capacity, grape_varietal, wine_vintage, appellation,
		alcohol_content, ph_level, company_name, plant_registry, street, state,
		contact_person, phone_number, approval_date, year, month, day, signal,
		refile_count, category FROM records`)
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to query all records").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.AllRecords")
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]*record.Record, error) {
	var out []*record.Record
	for rows.Next() {
		r := &record.Record{}
		var year, month, day sql.NullInt64
		var signal string
		if err := rows.Scan(
			&r.TTBID, &r.SerialNumber, &r.VendorCode, &r.Status, &r.ClassTypeCode, &r.OriginCode,
			&r.TypeOfApplication, &r.BrandName, &r.FancifulName, &r.Qualifications, &r.Formula,
			&r.ForSaleIn, &r.TotalBottleCapacity, &r.GrapeVarietal, &r.WineVintage, &r.Appellation,
			&r.AlcoholContent, &r.PHLevel, &r.CompanyName, &r.PlantRegistry, &r.Street, &r.State,
			&r.ContactPerson, &r.PhoneNumber, &r.ApprovalDate, &year, &month, &day, &signal,
			&r.RefileCount, &r.Category,
		); err != nil {
			return nil, coreerror.Wrap(err, "failed to scan record row").
				WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.scanRecords")
		}
		r.Signal = record.Signal(signal)
		if year.Valid {
			v := int(year.Int64)
			r.Year = &v
		}
		if month.Valid {
			v := int(month.Int64)
			r.Month = &v
		}
		if day.Valid {
			v := int(day.Int64)
			r.Day = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// UpsertMonthProgress records the current link-collection and detail-scrape
// state for one (year, month), overwriting any prior row for that key.
func (s *Store) UpsertMonthProgress(ctx context.Context, p *record.MonthProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO month_progress (
			year, month, expected_links, collected_links, links_verified,
			scraped_details, details_verified, last_error
		) VALUES (?,?,?,?,?,?,?,?)`,
		p.Year, p.Month, p.ExpectedLinks, p.CollectedLinks, boolToInt(p.LinksVerified),
		p.ScrapedDetails, boolToInt(p.DetailsVerified), p.LastError,
	)
	if err != nil {
		return coreerror.Wrap(err, "failed to upsert month progress").
			WithCode(coreerror.CodeDatabaseError).
			WithOperation("localstore.UpsertMonthProgress").
			WithDetail("year", p.Year).WithDetail("month", p.Month)
	}
	return nil
}

// MonthProgress returns the tracked progress for (year, month), or a zero
// value with ok=false if no row exists yet.
func (s *Store) MonthProgress(ctx context.Context, year, month int) (p record.MonthProgress, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT year, month, expected_links, collected_links, links_verified,
			scraped_details, details_verified, last_error
		FROM month_progress WHERE year = ? AND month = ?`, year, month)

	var linksVerified, detailsVerified int
	scanErr := row.Scan(&p.Year, &p.Month, &p.ExpectedLinks, &p.CollectedLinks, &linksVerified,
		&p.ScrapedDetails, &detailsVerified, &p.LastError)
	if scanErr == sql.ErrNoRows {
		return record.MonthProgress{}, false, nil
	}
	if scanErr != nil {
		return record.MonthProgress{}, false, coreerror.Wrap(scanErr, "failed to read month progress").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.MonthProgress")
	}
	p.LinksVerified = linksVerified != 0
	p.DetailsVerified = detailsVerified != 0
	return p, true, nil
}

// AllMonthProgress returns every tracked (year, month) progress row, for
// status reporting.
func (s *Store) AllMonthProgress(ctx context.Context) ([]record.MonthProgress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, month, expected_links, collected_links, links_verified,
			scraped_details, details_verified, last_error
		FROM month_progress ORDER BY year, month`)
	if err != nil {
		return nil, coreerror.Wrap(err, "failed to list month progress").
			WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.AllMonthProgress")
	}
	defer rows.Close()

	var out []record.MonthProgress
	for rows.Next() {
		var p record.MonthProgress
		var linksVerified, detailsVerified int
		if err := rows.Scan(&p.Year, &p.Month, &p.ExpectedLinks, &p.CollectedLinks, &linksVerified,
			&p.ScrapedDetails, &detailsVerified, &p.LastError); err != nil {
			return nil, coreerror.Wrap(err, "failed to scan month progress row").
				WithCode(coreerror.CodeDatabaseError).WithOperation("localstore.AllMonthProgress")
		}
		p.LinksVerified = linksVerified != 0
		p.DetailsVerified = detailsVerified != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
