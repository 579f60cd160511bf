// Package loader pushes the final pipeline tables into a relational
// database: an embedded SQLite file by default, or a Postgres server. Both
// paths go through database/sql so the loading logic is shared.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"srtingest/internal/pipeline"
	"srtingest/internal/table"
)

// DefaultBatchSize bounds rows per insert statement. Matches the upstream
// ingestion batch size.
const DefaultBatchSize = 5000

// Config selects and parameterizes the target database.
type Config struct {
	Driver      string // sqlite (default) or postgres
	SQLitePath  string // database file when driver=sqlite
	PostgresDSN string // connection string when driver=postgres
	BatchSize   int
}

// Stats reports rows loaded per table.
type Stats struct {
	Patients    int
	Definitions int
	Values      int
}

// Loader owns one database handle.
type Loader struct {
	db       *sql.DB
	postgres bool
	batch    int
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Loader, error) {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	var (
		db       *sql.DB
		err      error
		postgres bool
	)
	switch cfg.Driver {
	case "", "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "srtingest.db"
		}
		db, err = sql.Open("sqlite", path)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres dsn required")
		}
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		postgres = true
	default:
		return nil, fmt.Errorf("unknown load driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Loader{db: db, postgres: postgres, batch: batch}, nil
}

// Close releases the database handle.
func (l *Loader) Close() error { return l.db.Close() }

// DDL is portable across sqlite and postgres.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		patient_id TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS field_definitions (
		field_name TEXT PRIMARY KEY,
		field_type TEXT NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS field_values (
		patient_id TEXT NOT NULL,
		field_name TEXT NOT NULL,
		field_value TEXT,
		source TEXT
	)`,
}

// EnsureSchema creates the target tables when absent.
func (l *Loader) EnsureSchema(ctx context.Context) error {
	for _, stmt := range ddl {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// LoadAll ensures the schema and loads all three tables, each in its own
// transaction.
func (l *Loader) LoadAll(ctx context.Context, patients, definitions, values *table.Table) (Stats, error) {
	if err := l.EnsureSchema(ctx); err != nil {
		return Stats{}, err
	}
	var stats Stats
	var err error
	if stats.Patients, err = l.LoadPatients(ctx, patients); err != nil {
		return stats, err
	}
	if stats.Definitions, err = l.LoadDefinitions(ctx, definitions); err != nil {
		return stats, err
	}
	if stats.Values, err = l.LoadValues(ctx, values); err != nil {
		return stats, err
	}
	return stats, nil
}

// LoadPatients inserts the patient dimension table.
func (l *Loader) LoadPatients(ctx context.Context, patients *table.Table) (int, error) {
	if !patients.HasColumn(pipeline.ColPatientID) {
		return 0, &table.SchemaError{Path: pipeline.FilePatients, Missing: []string{pipeline.ColPatientID}}
	}
	rows := make([][]any, 0, patients.Len())
	for i := 0; i < patients.Len(); i++ {
		rows = append(rows, []any{cellArg(patients.Cell(i, pipeline.ColPatientID))})
	}
	return l.insert(ctx, "patients", []string{"patient_id"}, rows)
}

// LoadDefinitions inserts the field definition table.
func (l *Loader) LoadDefinitions(ctx context.Context, definitions *table.Table) (int, error) {
	required := []string{pipeline.ColFieldName, pipeline.ColDataType, pipeline.ColDescription}
	for _, col := range required {
		if !definitions.HasColumn(col) {
			return 0, &table.SchemaError{Path: pipeline.FileCompliantDefs, Missing: []string{col}}
		}
	}
	rows := make([][]any, 0, definitions.Len())
	for i := 0; i < definitions.Len(); i++ {
		rows = append(rows, []any{
			cellArg(definitions.Cell(i, pipeline.ColFieldName)),
			cellArg(definitions.Cell(i, pipeline.ColDataType)),
			cellArg(definitions.Cell(i, pipeline.ColDescription)),
		})
	}
	return l.insert(ctx, "field_definitions", []string{"field_name", "field_type", "description"}, rows)
}

// LoadValues inserts the sourced field value fact table. Null field values
// load as SQL NULLs.
func (l *Loader) LoadValues(ctx context.Context, values *table.Table) (int, error) {
	required := []string{pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue, pipeline.ColSource}
	for _, col := range required {
		if !values.HasColumn(col) {
			return 0, &table.SchemaError{Path: pipeline.FileSourcedValues, Missing: []string{col}}
		}
	}
	rows := make([][]any, 0, values.Len())
	for i := 0; i < values.Len(); i++ {
		rows = append(rows, []any{
			cellArg(values.Cell(i, pipeline.ColPatientID)),
			cellArg(values.Cell(i, pipeline.ColFieldName)),
			cellArg(values.Cell(i, pipeline.ColFieldValue)),
			cellArg(values.Cell(i, pipeline.ColSource)),
		})
	}
	return l.insert(ctx, "field_values", []string{"patient_id", "field_name", "field_value", "source"}, rows)
}

// insert writes rows in batches inside one transaction.
func (l *Loader) insert(ctx context.Context, tableName string, columns []string, rows [][]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin %s load: %w", tableName, err)
	}
	inserted := 0
	for start := 0; start < len(rows); start += l.batch {
		end := start + l.batch
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		stmt, args := l.batchInsert(tableName, columns, batch)
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("insert into %s: %w", tableName, err)
		}
		inserted += len(batch)
	}
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit %s load: %w", tableName, err)
	}
	return inserted, nil
}

// batchInsert builds one multi-row INSERT with dialect-appropriate
// placeholders ($N for postgres, ? for sqlite).
func (l *Loader) batchInsert(tableName string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", tableName, strings.Join(columns, ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			if l.postgres {
				fmt.Fprintf(&b, "$%d", len(args)+1)
			} else {
				b.WriteString("?")
			}
			args = append(args, row[j])
		}
		b.WriteString(")")
	}
	return b.String(), args
}

func cellArg(v table.Value) any {
	if v.Null {
		return nil
	}
	return v.Raw
}
