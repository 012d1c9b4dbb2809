package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chewxy/math32"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
	if cfg.Gravity[1] != -20 {
		t.Errorf("Expected default gravity Y -20, got %f", cfg.Gravity[1])
	}
	if cfg.CellSize != 5 {
		t.Errorf("Expected default cell size 5, got %f", cfg.CellSize)
	}
}

func TestParseOverridesOnlyPresentFields(t *testing.T) {
	doc := []byte(`
gravity: [0, -9.81, 0]
sleep:
  velocity: 0.5
character:
  maxSlides: 6
`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Expected parse to succeed, got %v", err)
	}
	if cfg.Gravity[1] != -9.81 {
		t.Errorf("Expected gravity Y -9.81, got %f", cfg.Gravity[1])
	}
	if cfg.Sleep.Velocity != 0.5 {
		t.Errorf("Expected sleep velocity 0.5, got %f", cfg.Sleep.Velocity)
	}
	if cfg.Character.MaxSlides != 6 {
		t.Errorf("Expected maxSlides 6, got %d", cfg.Character.MaxSlides)
	}

	// Untouched fields keep their defaults
	def := DefaultConfig()
	if cfg.Sleep.Angular != def.Sleep.Angular {
		t.Errorf("Expected default sleep angular %f, got %f", def.Sleep.Angular, cfg.Sleep.Angular)
	}
	if cfg.Character.SnapLength != def.Character.SnapLength {
		t.Errorf("Expected default snap length %f, got %f", def.Character.SnapLength, cfg.Character.SnapLength)
	}
	if cfg.GPUThreshold != def.GPUThreshold {
		t.Errorf("Expected default GPU threshold %d, got %d", def.GPUThreshold, cfg.GPUThreshold)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"negative cell size", "cellSize: -1"},
		{"zero cell size", "cellSize: 0"},
		{"zero gpu threshold", "gpuThreshold: 0"},
		{"negative sleep velocity", "sleep:\n  velocity: -0.1"},
		{"steep floor angle", "character:\n  floorMaxAngle: 120"},
		{"zero max slides", "character:\n  maxSlides: 0"},
		{"negative snap", "character:\n  snapLength: -0.5"},
		{"negative vertex budget", "staticVertexBudget: -1"},
		{"malformed yaml", "gravity: ["},
	}
	for _, tc := range cases {
		cfg, err := Parse([]byte(tc.doc))
		if err == nil {
			t.Errorf("Expected %s to fail parsing", tc.name)
		}
		// Failure hands back the defaults so the caller can keep running
		if cfg.CellSize != DefaultConfig().CellSize {
			t.Errorf("Expected defaults after %s, got cell size %f", tc.name, cfg.CellSize)
		}
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("Expected an error for a missing file")
	}
	if cfg.CellSize != DefaultConfig().CellSize {
		t.Errorf("Expected default cell size, got %f", cfg.CellSize)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("cellSize: 8\ngpuThreshold: 100\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if cfg.CellSize != 8 {
		t.Errorf("Expected cell size 8, got %f", cfg.CellSize)
	}
	if cfg.GPUThreshold != 100 {
		t.Errorf("Expected GPU threshold 100, got %d", cfg.GPUThreshold)
	}
}

func TestAngleConversions(t *testing.T) {
	cfg := DefaultConfig()
	if diff := math32.Abs(cfg.FloorMaxAngleRad() - math32.Pi/4); diff > 0.0001 {
		t.Errorf("Expected 45 degrees to convert to pi/4, off by %f", diff)
	}
	if diff := math32.Abs(cfg.WallMinSlideAngleRad() - 15*math32.Pi/180); diff > 0.0001 {
		t.Errorf("Expected 15 degree conversion, off by %f", diff)
	}
}

func TestGravityVec(t *testing.T) {
	cfg := Config{Gravity: [3]float32{1, 2, 3}}
	v := cfg.GravityVec()
	if v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Errorf("Expected (1, 2, 3), got (%f, %f, %f)", v.X, v.Y, v.Z)
	}
}

func TestSleepThresholdsConversion(t *testing.T) {
	cfg := DefaultConfig()
	tholds := cfg.SleepThresholds()
	if tholds.Velocity != cfg.Sleep.Velocity || tholds.Angular != cfg.Sleep.Angular || tholds.Time != cfg.Sleep.Time {
		t.Error("Expected threshold bundle to match the config fields")
	}
}

func TestWatcherReportsYamlWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte("cellSize: 5\n"), 0644); err != nil {
		t.Fatalf("Failed to seed config file: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("cellSize: 6\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite config file: %v", err)
	}

	select {
	case name := <-w.Events:
		if filepath.Base(name) != "engine.yaml" {
			t.Errorf("Expected event for engine.yaml, got %s", name)
		}
	case <-time.After(2 * time.Second):
		t.Error("Expected a watch event within 2 seconds")
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte("cellSize: 5\n"), 0644); err != nil {
		t.Fatalf("Failed to seed config file: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0644); err != nil {
		t.Fatalf("Failed to write unrelated file: %v", err)
	}

	select {
	case name := <-w.Events:
		t.Errorf("Expected no event for a txt file, got %s", name)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "engine.yaml"))
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Expected first close to succeed, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Expected second close to be a no-op, got %v", err)
	}
}
