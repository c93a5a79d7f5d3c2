package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_FileReceivesWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	log, closer, err := New(Options{Env: "test", Level: "debug", File: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.SetOutput(os.Stderr)

	log.Info("venue listed")
	log.WithField("venue_id", 7).Error("could not list venue")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "venue listed") {
		t.Fatalf("info entry should not reach the error file: %s", content)
	}
	if !strings.Contains(content, "could not list venue") || !strings.Contains(content, "venue_id=7") {
		t.Fatalf("expected error entry in file, got: %s", content)
	}
	if !strings.Contains(content, "logging_test.go") {
		t.Fatalf("expected caller location in file entry, got: %s", content)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestNew_DefaultLevel(t *testing.T) {
	log, _, err := New(Options{})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", log.GetLevel())
	}
}
