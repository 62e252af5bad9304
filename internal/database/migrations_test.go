package database

import (
	"testing"
	"testing/fstest"
)

func TestMigrationFiles_Sorted(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_items.sql":  {Data: []byte("SELECT 1")},
		"migrations/001_orders.sql": {Data: []byte("SELECT 1")},
		"migrations/README.md":      {Data: []byte("notes")},
	}

	files, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("migrationFiles() error = %v", err)
	}
	if len(files) != 2 || files[0] != "001_orders.sql" || files[1] != "002_items.sql" {
		t.Errorf("migrationFiles() = %v", files)
	}
}

func TestMigrationFiles_Bundled(t *testing.T) {
	files, err := migrationFiles(migrationFS)
	if err != nil {
		t.Fatalf("migrationFiles() error = %v", err)
	}
	if len(files) == 0 || files[0] != "001_pickup_orders.sql" {
		t.Errorf("bundled migrations = %v", files)
	}
}
