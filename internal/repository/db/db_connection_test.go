package db

import (
	"path/filepath"
	"testing"
)

func TestInitDB_CreatesKVTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dash.db")

	conn, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(`INSERT INTO kv (key, value, updated_at) VALUES ('k', 'v', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("insert into kv: %v", err)
	}
	var v string
	if err := conn.QueryRow(`SELECT value FROM kv WHERE key='k'`).Scan(&v); err != nil || v != "v" {
		t.Fatalf("select from kv: v=%q err=%v", v, err)
	}

	// Reopening must not fail on an existing schema.
	again, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB second open: %v", err)
	}
	_ = again.Close()
}
