// Package export writes report snapshots to JSON or YAML files in a
// directory and reads them back.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a snapshot file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrNotFound      = errors.New("snapshot not found")
	ErrInvalidName   = errors.New("invalid snapshot name")
	ErrUnknownFormat = errors.New("unknown export format")
)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w %q: must be json or yaml", ErrUnknownFormat, raw)
	}
}

// Store keeps snapshot files in one directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

// Path returns the file a snapshot with this name and format is stored at.
// Directory components of name are dropped.
func (s *Store) Path(name string, format Format) (string, error) {
	clean := filepath.Base(name)
	if clean == "" || clean == "." || clean == ".." || clean == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, clean+"."+string(format)), nil
}

// Save encodes v and writes it, creating the directory if needed. It returns
// the path written.
func (s *Store) Save(name string, format Format, v any) (string, error) {
	path, err := s.Path(name, format)
	if err != nil {
		return "", err
	}

	data, err := encode(format, v)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

// Load reads the named snapshot into v.
func (s *Store) Load(name string, format Format, v any) error {
	path, err := s.Path(name, format)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- name is sanitized
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return nil
}

func encode(format Format, v any) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
