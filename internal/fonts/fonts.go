package fonts

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions we consider as font files.
var Exts = []string{".ttf", ".otf"}

// BaseDirs returns candidate base directories for fonts (relative to process cwd), so fonts are found
// whether the viewer runs from the repo root or from cmd/boxworld.
func BaseDirs() []string {
	return []string{"assets/fonts", "../../assets/fonts"}
}

// ScanDir returns relative paths of all font files under dir (e.g. "Inter/Inter-Regular.ttf"), sorted.
// Paths use forward slashes. Only .ttf and .otf are included. A missing dir gives no paths and no error.
func ScanDir(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, e := range Exts {
			if ext == e {
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				out = append(out, filepath.ToSlash(rel))
				return nil
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// normalizeForMatch lowercases and removes spaces, dashes, and underscores for fuzzy matching.
func normalizeForMatch(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// Find searches dirs in order for a font file whose relative path fuzzily contains search
// ("Inter", "jetbrains mono", "Inter-Regular"). An empty search matches any font.
// When several files match in the first dir that has a match, one whose path contains "Regular" wins.
// Returns the full path, or os.ErrNotExist.
func Find(dirs []string, search string) (string, error) {
	norm := normalizeForMatch(search)
	for _, base := range dirs {
		list, err := ScanDir(base)
		if err != nil || len(list) == 0 {
			continue
		}
		var matches []string
		for _, rel := range list {
			if strings.Contains(normalizeForMatch(rel), norm) {
				matches = append(matches, rel)
			}
		}
		if len(matches) == 0 {
			continue
		}
		pick := matches[0]
		for _, rel := range matches {
			if strings.Contains(strings.ToLower(rel), "regular") {
				pick = rel
				break
			}
		}
		return filepath.Join(base, filepath.FromSlash(pick)), nil
	}
	return "", os.ErrNotExist
}
