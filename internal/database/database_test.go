package database

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	dsn := DSN("fyyur", "pw", "db.local", "3306", "fyyur")
	for _, want := range []string{
		"fyyur:pw@tcp(db.local:3306)/fyyur",
		"parseTime=true",
		"clientFoundRows=true",
		"multiStatements=true",
		"charset=utf8mb4",
	} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("expected %q in dsn %q", want, dsn)
		}
	}
}

func TestSource_EveryVersionReversible(t *testing.T) {
	src, err := Source()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	seen := 0
	for {
		seen++
		up, _, err := src.ReadUp(version)
		if err != nil {
			t.Fatalf("read up %d: %v", version, err)
		}
		upSQL, _ := io.ReadAll(up)
		up.Close()
		down, _, err := src.ReadDown(version)
		if err != nil {
			t.Fatalf("read down %d: %v", version, err)
		}
		down.Close()
		if strings.TrimSpace(string(upSQL)) == "" {
			t.Fatalf("empty up migration %d", version)
		}

		next, err := src.Next(version)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			t.Fatalf("next after %d: %v", version, err)
		}
		version = next
	}
	if seen != 2 {
		t.Fatalf("expected 2 migrations, got %d", seen)
	}
}

func TestMigrate_RejectsUnknownDirection(t *testing.T) {
	if err := Migrate("ignored", Direction("sideways"), 0); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}
