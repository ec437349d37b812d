package storage

import (
	"context"
	"path/filepath"
	"testing"

	"slot-swapper/internal/platform/config"
)

func TestOpen_MemoryAndSQLite(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, config.StorageConfig{Driver: config.DriverMemory}, false)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	_ = mem.Close()

	lite, err := Open(ctx, config.StorageConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "slots.db"),
	}, true)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	_ = lite.Close()
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.StorageConfig{Driver: "mongo"}, false); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
