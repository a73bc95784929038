package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"quickfy/backend/internal/db"
)

func TestRun_EmptyDSN(t *testing.T) {
	err := Run("", Up)
	if err == nil {
		t.Fatal("Run with empty DSN should return error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL is not set") {
		t.Errorf("error = %q, should mention DATABASE_URL", err.Error())
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	for _, d := range []string{"", "invalid", "UP", "Down"} {
		if err := Run("postgres://localhost/test", Direction(d)); err == nil {
			t.Errorf("Run with direction %q should return error", d)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range []string{"up", "down"} {
		got, err := ParseDirection(d)
		if err != nil || string(got) != d {
			t.Errorf("ParseDirection(%q) = %q, %v", d, got, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("ParseDirection(sideways) should fail")
	}
}

func TestMigrationFS_HasPairedFiles(t *testing.T) {
	entries, err := fs.ReadDir(db.MigrationFS, "migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("up=%d down=%d, want matching non-zero counts", ups, downs)
	}
}
