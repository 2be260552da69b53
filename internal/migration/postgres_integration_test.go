package migration

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// postgresDB opens TALLY_TEST_POSTGRES, e.g.
// postgres://tally@localhost:5432/tally_test?sslmode=disable
func postgresDB(t *testing.T) *sql.DB {
	t.Helper()
	connStr := os.Getenv("TALLY_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("TALLY_TEST_POSTGRES not set")
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("ping: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.Exec("DROP TABLE IF EXISTS schema_version")
		_, _ = db.Exec("DROP TABLE IF EXISTS migration_test_kv")
		db.Close()
	})
	return db
}

func TestPostgresRunner(t *testing.T) {
	db := postgresDB(t)
	runner := NewRunner(db, testMigrations(map[string]string{
		"001_kv.sql":    "CREATE TABLE migration_test_kv (key TEXT PRIMARY KEY, value BYTEA NOT NULL);",
		"002_index.sql": "CREATE INDEX migration_test_kv_value ON migration_test_kv (value);",
	}), DriverPostgres)

	applied, err := runner.ApplyMigrations(nil)
	if err != nil || applied != 2 {
		t.Fatalf("ApplyMigrations() = %d, %v; want 2, nil", applied, err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion() = %v", err)
	}

	// SetVersion keeps a single row
	for _, v := range []int{1, 2} {
		if err := runner.SetVersion(v); err != nil {
			t.Fatalf("SetVersion(%d): %v", v, err)
		}
	}
	var rows int
	if err := db.QueryRow("SELECT count(*) FROM schema_version").Scan(&rows); err != nil || rows != 1 {
		t.Errorf("schema_version rows = %d, %v; want 1", rows, err)
	}
}
