package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# overrides\n\nBOXWORLD_ITERATIONS=10\nexport BOXWORLD_LEVEL=\"pyramid\"\nBOXWORLD_GRID='false'\nBOXWORLD_KEEP=file\nnot a pair\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOXWORLD_KEEP", "process")
	// Registered so t.Setenv restores them after the test.
	t.Setenv("BOXWORLD_ITERATIONS", "")
	t.Setenv("BOXWORLD_LEVEL", "")
	t.Setenv("BOXWORLD_GRID", "")
	for _, k := range []string{"BOXWORLD_ITERATIONS", "BOXWORLD_LEVEL", "BOXWORLD_GRID"} {
		os.Unsetenv(k)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if n, ok, err := Int("ITERATIONS"); err != nil || !ok || n != 10 {
		t.Errorf("Int(ITERATIONS) = %d, %v, %v", n, ok, err)
	}
	if s, ok := String("LEVEL"); !ok || s != "pyramid" {
		t.Errorf("String(LEVEL) = %q, %v", s, ok)
	}
	if b, ok, err := Bool("GRID"); err != nil || !ok || b {
		t.Errorf("Bool(GRID) = %v, %v, %v", b, ok, err)
	}
	if s, _ := String("KEEP"); s != "process" {
		t.Errorf("String(KEEP) = %q, want process environment to win", s)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("BOXWORLD_DT", "0.008")
	if v, ok, err := Float("DT"); err != nil || !ok || v != 0.008 {
		t.Errorf("Float(DT) = %v, %v, %v", v, ok, err)
	}
	t.Setenv("BOXWORLD_DT", "fast")
	if _, ok, err := Float("DT"); err == nil || !ok {
		t.Errorf("Float(DT) with bad value = %v, %v", ok, err)
	}
	if _, ok, err := Float("UNSET_FOR_TEST"); ok || err != nil {
		t.Errorf("Float(unset) = %v, %v", ok, err)
	}
}
