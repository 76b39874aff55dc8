package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat parses a format name; "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Decode reads a document in format f from r.
func Decode(r io.Reader, f Format) (Graph, error) {
	var g Graph
	var err error
	switch f {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&g)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&g)
	default:
		err = json.NewDecoder(r).Decode(&g)
	}
	if err != nil {
		return Graph{}, fmt.Errorf("decode %s: %w", f, err)
	}
	return g, nil
}

// Encode writes g in format f to w. JSON output is indented.
func Encode(w io.Writer, g Graph, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(g); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// Unmarshal decodes a document from bytes in format f.
func Unmarshal(data []byte, f Format) (Graph, error) {
	return Decode(bytes.NewReader(data), f)
}

// ReadFile reads a document, choosing the format from the extension.
func ReadFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}

// WriteFile writes a document, choosing the format from the extension.
// The file is created with 0644 permissions.
func WriteFile(path string, g Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, g, FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
