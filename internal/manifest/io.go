package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// FileName is the manifest's name inside the output root.
const FileName = "manifest.json"

// Read reads a manifest from path.
func Read(path string) (Manifest, error) {
	if strings.TrimSpace(path) == "" {
		return Manifest{}, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Manifest{}, nil
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// ReadAllowMissing reads a manifest and treats a missing file as empty.
func ReadAllowMissing(path string) (Manifest, error) {
	m, err := Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{}, nil
		}
		return Manifest{}, err
	}
	return m, nil
}

// Write writes m as pretty JSON.
func Write(path string, m Manifest) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if m.Pages == nil {
		m.Pages = []Entry{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
