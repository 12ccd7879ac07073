package preflight_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"seoflow/internal/preflight"
	"seoflow/internal/testsupport"
)

func TestRunAllDryRunChecksDirectoriesOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 checks in dry-run mode, got %d", len(results))
	}
	if failed := preflight.Failures(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %s", preflight.Describe(failed))
	}
}

func TestCheckDirectoryAccessMissing(t *testing.T) {
	result := preflight.CheckDirectoryAccess("Data directory", filepath.Join(t.TempDir(), "absent"))
	if result.Passed {
		t.Fatal("expected missing directory to fail")
	}
}

func TestCheckDirectoryAccessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if result := preflight.CheckDirectoryAccess("Data directory", path); result.Passed {
		t.Fatal("expected plain file to fail the directory check")
	}
}

func TestCheckEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := preflight.CheckEndpoint(context.Background(), "OpenAI API", srv.URL)
	if !result.Passed {
		t.Fatalf("expected any HTTP answer to pass: %s", result.Detail)
	}

	if result := preflight.CheckEndpoint(context.Background(), "OpenAI API", ""); result.Passed {
		t.Fatal("expected empty base URL to fail")
	}
}

func TestRunAllLiveModeChecksProviders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithLiveProviders())
	cfg.OpenAI.BaseURL = srv.URL
	cfg.DataForSEO.BaseURL = srv.URL
	cfg.WordPress.URL = ""
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 checks in live mode, got %d", len(results))
	}
	if failed := preflight.Failures(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %s", preflight.Describe(failed))
	}
}
