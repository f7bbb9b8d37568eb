package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(dir, filepath.FromSlash(n))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("font"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Inter/Inter-Bold.ttf", "Inter/Inter-Regular.TTF", "Mono.otf", "readme.txt")
	got, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Inter/Inter-Bold.ttf", "Inter/Inter-Regular.TTF", "Mono.otf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScanDir() = %v, want %v", got, want)
	}
	if got, err := ScanDir(filepath.Join(dir, "missing")); err != nil || len(got) != 0 {
		t.Errorf("ScanDir(missing) = %v, %v", got, err)
	}
}

func TestFind(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeFiles(t, first, "Inter/Inter-Bold.ttf", "Inter/Inter-Regular.ttf")
	writeFiles(t, second, "JetBrains_Mono/JetBrainsMono-Bold.ttf")
	dirs := []string{filepath.Join(first, "nope"), first, second}

	tests := []struct {
		search string
		want   string
	}{
		{"inter", filepath.Join(first, "Inter", "Inter-Regular.ttf")},
		{"Inter-Bold", filepath.Join(first, "Inter", "Inter-Bold.ttf")},
		{"jetbrains mono", filepath.Join(second, "JetBrains_Mono", "JetBrainsMono-Bold.ttf")},
		{"", filepath.Join(first, "Inter", "Inter-Regular.ttf")},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got, err := Find(dirs, tt.search)
			if err != nil || got != tt.want {
				t.Errorf("Find(%q) = %q, %v; want %q", tt.search, got, err, tt.want)
			}
		})
	}
	if _, err := Find(dirs, "comic"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Find(comic) error = %v, want ErrNotExist", err)
	}
}
