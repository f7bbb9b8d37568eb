package env

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Prefix is prepended to every key the lookup helpers read, e.g. Float("ITERATIONS") reads BOXWORLD_ITERATIONS.
const Prefix = "BOXWORLD_"

// Load reads the given file (e.g. ".env") and sets environment variables for each
// line of the form KEY=VALUE. Empty lines and lines starting with # are skipped.
// Variables already set in the process environment win over the file.
// The file may be missing; that is not an error.
func Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		i := strings.Index(line, "=")
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+1:])
		if key == "" {
			continue
		}
		// Remove surrounding quotes if present
		if len(value) >= 2 && (value[0] == '"' && value[len(value)-1] == '"' || value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		_ = os.Setenv(key, value)
	}
	return scanner.Err()
}

// String returns the value of Prefix+key and whether it is set and non-empty.
func String(key string) (string, bool) {
	v, ok := os.LookupEnv(Prefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Float parses Prefix+key as a float64. ok is false when the variable is unset.
func Float(key string) (v float64, ok bool, err error) {
	s, ok := String(key)
	if !ok {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true, fmt.Errorf("env %s%s: %w", Prefix, key, err)
	}
	return v, true, nil
}

// Int parses Prefix+key as an int. ok is false when the variable is unset.
func Int(key string) (v int, ok bool, err error) {
	s, ok := String(key)
	if !ok {
		return 0, false, nil
	}
	v, err = strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("env %s%s: %w", Prefix, key, err)
	}
	return v, true, nil
}

// Bool parses Prefix+key with strconv.ParseBool. ok is false when the variable is unset.
func Bool(key string) (v bool, ok bool, err error) {
	s, ok := String(key)
	if !ok {
		return false, false, nil
	}
	v, err = strconv.ParseBool(s)
	if err != nil {
		return false, true, fmt.Errorf("env %s%s: %w", Prefix, key, err)
	}
	return v, true, nil
}
