package identity

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOrCreateIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.json")

	first, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if !strings.HasPrefix(first, "go-app-") {
		t.Errorf("Expected go-app- prefix, got %q", first)
	}

	second, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("Second LoadOrCreate failed: %v", err)
	}
	if second != first {
		t.Errorf("Device tag changed across loads: %q vs %q", first, second)
	}
}
