package storage_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/JaimeStill/market-board/pkg/lifecycle"
	"github.com/JaimeStill/market-board/pkg/logging"
	"github.com/JaimeStill/market-board/pkg/storage"
)

func TestPostgres_RoundTrip(t *testing.T) {
	dsn := os.Getenv("STORAGE_TEST_DSN")
	if dsn == "" {
		t.Skip("STORAGE_TEST_DSN not set")
	}

	cfg := finalized(t, &storage.Config{Backend: storage.BackendPostgres, DSN: dsn})
	sys, err := storage.New(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	lc.WaitForStartup()
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })

	ctx := context.Background()
	if err := sys.Set(ctx, "token", "pg-token"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, err := sys.Get(ctx, "token")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != "pg-token" {
		t.Errorf("Get() = %q, want %q", got, "pg-token")
	}

	if err := sys.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := sys.Get(ctx, "token"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
}
