// Package testenv loads integration-test settings from a .env.test file.
package testenv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const envFile = ".env.test"

// ErrNoEnvFile is returned by Load when no .env.test exists up the tree.
var ErrNoEnvFile = errors.New("env file not found: " + envFile)

// Load finds .env.test in the working directory or a parent and applies it.
func Load() error {
	path, err := findUp(envFile)
	if err != nil {
		return err
	}
	return LoadFile(path)
}

// LoadFile parses path and applies it. Variables already set in the
// environment win over the file.
func LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open env file: %w", err)
	}
	defer f.Close()

	vars, err := Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for key, value := range vars {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set env %s: %w", key, err)
		}
	}
	return nil
}

// Parse reads KEY=value lines. Blank lines, comments and lines without "="
// are skipped; an "export " prefix and surrounding quotes are stripped.
// Later lines override earlier ones.
func Parse(r io.Reader) (map[string]string, error) {
	vars := map[string]string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		vars[key] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return vars, sc.Err()
}

func findUp(filename string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	for {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoEnvFile
		}
		dir = parent
	}
}
