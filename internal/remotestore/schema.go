package remotestore

import (
	"context"

	coreerror "github.com/bevalc-intelligence/cola-engine/foundation/core/error"
)

// Migration is a named, idempotent schema change applied against the remote
// database, followed by a verification count query. Only migrations with
// VerifyWantZero set expect that count to reach zero.
type Migration struct {
	Name   string
	Apply  []Statement
	Verify Statement
	// VerifyWantZero is true when a correctly applied migration leaves the
	// verification query's row count at zero (e.g. counting rows still
	// missing the new column).
	VerifyWantZero bool
}

// EnsureSchema creates the remote tables if they do not already exist. It is
// safe to call on every daemon startup.
func (c *Client) EnsureSchema(ctx context.Context) error {
	_, err := c.ExecBatch(ctx, []Statement{
		{SQL: `CREATE TABLE IF NOT EXISTS records (
			ttb_id TEXT PRIMARY KEY,
			serial_number TEXT,
			vendor_code TEXT,
			status TEXT,
			class_type_code TEXT,
			origin_code TEXT,
			type_of_application TEXT,
			brand_name TEXT,
			fanciful_name TEXT,
			qualifications TEXT,
			formula TEXT,
			for_sale_in TEXT,
			total_bottle_capacity TEXT,
			grape_varietal TEXT,
			wine_vintage TEXT,
			appellation TEXT,
			alcohol_content TEXT,
			ph_level TEXT,
			company_name TEXT,
			plant_registry TEXT,
			street TEXT,
			state TEXT,
			contact_person TEXT,
			phone_number TEXT,
			approval_date TEXT,
			year INTEGER,
			month INTEGER,
			day INTEGER,
			signal TEXT,
			refile_count INTEGER NOT NULL DEFAULT 0,
			category TEXT
		)`},
		{SQL: `CREATE TABLE IF NOT EXISTS companies (
			company_id INTEGER PRIMARY KEY AUTOINCREMENT,
			canonical_name TEXT NOT NULL,
			slug TEXT,
			total_filings INTEGER NOT NULL DEFAULT 0
		)`},
		{SQL: `CREATE TABLE IF NOT EXISTS company_aliases (
			raw_name TEXT PRIMARY KEY,
			company_id INTEGER NOT NULL
		)`},
		{SQL: `CREATE TABLE IF NOT EXISTS brand_slugs (
			slug TEXT PRIMARY KEY,
			brand_name TEXT NOT NULL,
			filing_count INTEGER NOT NULL DEFAULT 0
		)`},
	})
	if err != nil {
		return coreerror.Wrap(err, "failed to ensure remote schema").
			WithCode(coreerror.CodeDatabaseError).WithOperation("remotestore.EnsureSchema")
	}
	return nil
}

// Migrations is the ordered list of named schema backfills exposed as
// individual sync-daemon subcommands.
func Migrations() []Migration {
	return []Migration{
		{
			Name: "add-day-column",
			Apply: []Statement{
				{SQL: `ALTER TABLE records ADD COLUMN day INTEGER`},
			},
			Verify:         Statement{SQL: `SELECT COUNT(*) AS n FROM records WHERE day IS NULL AND approval_date LIKE '__/__/____'`},
			VerifyWantZero: false,
		},
		{
			Name: "fix-year-month",
			Apply: []Statement{
				{SQL: `UPDATE records SET
					year = CAST(substr(approval_date, 7, 4) AS INTEGER),
					month = CAST(substr(approval_date, 1, 2) AS INTEGER),
					day = CAST(substr(approval_date, 4, 2) AS INTEGER)
					WHERE approval_date LIKE '__/__/____' AND (year IS NULL OR month IS NULL OR day IS NULL)`},
			},
			Verify:         Statement{SQL: `SELECT COUNT(*) AS n FROM records WHERE approval_date LIKE '__/__/____' AND (year IS NULL OR month IS NULL OR day IS NULL)`},
			VerifyWantZero: true,
		},
		{
			Name: "backfill-signals",
			Apply: []Statement{
				{SQL: `UPDATE records SET signal = 'LEGACY' WHERE signal IS NULL AND (company_name IS NULL OR company_name = '' OR brand_name IS NULL OR brand_name = '')`},
			},
			Verify:         Statement{SQL: `SELECT COUNT(*) AS n FROM records WHERE signal IS NULL`},
			VerifyWantZero: false,
		},
	}
}

// RunMigration applies a named migration and runs its verification query,
// returning the verification row count so the caller can log it.
func (c *Client) RunMigration(ctx context.Context, m Migration) (verifyCount int64, err error) {
	if _, err := c.ExecBatch(ctx, m.Apply); err != nil {
		return 0, coreerror.Wrap(err, "migration apply failed").
			WithCode(coreerror.CodeDatabaseError).
			WithOperation("remotestore.RunMigration").
			WithDetail("migration", m.Name)
	}

	result, err := c.Exec(ctx, m.Verify.SQL, m.Verify.Params...)
	if err != nil {
		return 0, coreerror.Wrap(err, "migration verification query failed").
			WithCode(coreerror.CodeDatabaseError).
			WithOperation("remotestore.RunMigration").
			WithDetail("migration", m.Name)
	}
	if len(result.Results) == 0 {
		return 0, coreerror.New("migration verification returned no rows").
			WithCode(coreerror.CodeDatabaseError).
			WithOperation("remotestore.RunMigration").
			WithDetail("migration", m.Name)
	}
	n := toInt64(result.Results[0]["n"])
	return n, nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	default:
		return 0
	}
}
