package mysql

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var testDB *sql.DB

// Те же запросы гоняем на sqlite в памяти: синтаксис с "?" совместим.
const testSchema = `
CREATE TABLE profiles (
	id            TEXT PRIMARY KEY,
	login         TEXT NOT NULL UNIQUE,
	display_name  TEXT NOT NULL,
	role          TEXT NOT NULL,
	is_active     BOOLEAN NOT NULL,
	password_hash TEXT NOT NULL
);
CREATE TABLE customers (
	code      TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	is_active BOOLEAN NOT NULL,
	storages  TEXT NOT NULL
);
CREATE TABLE readings (
	id                     TEXT PRIMARY KEY,
	recorded_at            DATETIME NOT NULL,
	created_at             DATETIME NOT NULL,
	customer_code          TEXT NOT NULL,
	storage_number         TEXT NOT NULL,
	operation_type         TEXT NOT NULL,
	fixed_storage_quantity INTEGER NOT NULL,
	psi                    REAL NOT NULL,
	temp                   REAL NOT NULL,
	psi_out                REAL NOT NULL,
	flow_turbine           REAL NULL,
	remarks                TEXT NULL,
	operator_id            TEXT NOT NULL
);`

func TestMain(m *testing.M) {
	var err error
	testDB, err = sql.Open("sqlite", ":memory:")
	if err != nil {
		panic(fmt.Errorf("не удалось открыть тестовую БД: %w", err))
	}
	// у каждого соединения своя :memory: база
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(testSchema); err != nil {
		panic(fmt.Errorf("не удалось создать схему: %w", err))
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	for _, table := range []string{"readings", "customers", "profiles"} {
		_, err := testDB.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
	return NewWithDB(testDB, time.UTC)
}
