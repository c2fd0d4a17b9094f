package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freezethaw.log")
	if err := Init(false, path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { log = nil })

	GetSugaredLogger().Infow("aggregated", "months", 12)
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"aggregated"`) || !strings.Contains(string(data), `"months":12`) {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := Init(true, path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { log = nil })

	GetSugaredLogger().Debug("rendering heatmap")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "rendering heatmap") {
		t.Errorf("debug entry not written: %s", data)
	}
}
