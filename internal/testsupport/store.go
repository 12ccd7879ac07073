package testsupport

import (
	"context"
	"testing"

	"seoflow/internal/config"
	"seoflow/internal/sheet"
)

// MustOpenStore opens a sheet.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sheet.Store {
	t.Helper()

	store, err := sheet.Open(cfg)
	if err != nil {
		t.Fatalf("sheet.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AppendRecord inserts a record for tests using the provided store.
func AppendRecord(t testing.TB, store *sheet.Store, tab sheet.Tab, fields map[string]string) *sheet.Record {
	t.Helper()

	record, err := store.Append(context.Background(), tab, fields)
	if err != nil {
		t.Fatalf("store.Append: %v", err)
	}
	return record
}
