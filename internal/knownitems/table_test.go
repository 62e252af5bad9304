package knownitems

import (
	"testing"

	"mcorder/internal/models"
)

func TestTable_PutGet(t *testing.T) {
	tables := map[string]func(t *testing.T) *Table{
		"memory": func(t *testing.T) *Table { return NewMemory() },
		"file": func(t *testing.T) *Table {
			table, err := NewFile(t.TempDir())
			if err != nil {
				t.Fatalf("NewFile() error = %v", err)
			}
			return table
		},
	}

	for name, open := range tables {
		t.Run(name, func(t *testing.T) {
			table := open(t)
			defer table.Close()

			if _, ok, err := table.Get("1001"); err != nil || ok {
				t.Fatalf("Get() on empty table = %v, %v", ok, err)
			}

			if err := table.Put("1001", "Big Mac"); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := table.Put("1001", "Big Mac Meal"); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			got, ok, err := table.Get(models.ProductCode("1001"))
			if err != nil || !ok || got != "Big Mac Meal" {
				t.Errorf("Get() = %q, %v, %v; want Big Mac Meal", got, ok, err)
			}
		})
	}
}

func TestTable_FileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if err := first.Put("123-456", "Big Mac Deal"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	first.Close()

	second, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	defer second.Close()

	name, ok, err := second.Get("123-456")
	if err != nil || !ok || name != "Big Mac Deal" {
		t.Errorf("Get() after reopen = %q, %v, %v", name, ok, err)
	}
}

func TestTable_EmptyCodeIgnored(t *testing.T) {
	table := NewMemory()
	if err := table.Put("", "nothing"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok, err := table.Get(""); ok || err != nil {
		t.Errorf("Get(\"\") = %v, %v", ok, err)
	}
}
