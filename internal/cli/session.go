package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// sessionFile is the CLI login persisted between invocations.
type sessionFile struct {
	Username string `yaml:"username,omitempty"`
}

// readSession returns the stored username, or "" when logged out.
func readSession(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var s sessionFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	return s.Username, nil
}

// writeSession stores username; an empty username removes the file.
func writeSession(path, username string) error {
	if username == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(sessionFile{Username: username})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
