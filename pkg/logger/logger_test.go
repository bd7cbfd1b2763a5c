package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithOptionsWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bubbel.log")

	log, err := NewWithOptions(Options{File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}

	log.Info("record added")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"record added"`) {
		t.Errorf("log file does not contain entry: %s", data)
	}
	if !strings.Contains(string(data), `"timestamp"`) {
		t.Errorf("log file does not use the timestamp key: %s", data)
	}
}

func TestNamedNil(t *testing.T) {
	if Named(nil, "svc") == nil {
		t.Fatal("Named(nil) returned nil")
	}
}
