// Package source loads topic datasets for the graph. A dataset file holds a
// topic name, a list of concepts and a list of prerequisite edges.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/ritzau/knowledge-graph/pkg/logging"
	"github.com/ritzau/knowledge-graph/pkg/model"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrNoDataset         = errors.New("dataset file not found")
)

// Format identifies a dataset encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Source supplies datasets to the graph
type Source interface {
	Name() string
	Load(ctx context.Context) (*model.Dataset, error)
}

// FileSource reads a dataset from a single file
type FileSource struct {
	path string
}

// NewFileSource creates a source for a dataset file
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Path returns the dataset file path
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Load(ctx context.Context) (*model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := FormatFor(s.path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoDataset, s.path)
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	ds, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if ds.Topic == "" {
		ds.Topic = strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
	}

	logging.Logger("source.file").Info("loaded dataset",
		"path", s.path,
		"topic", ds.Topic,
		"concepts", len(ds.Concepts),
		"edges", len(ds.Edges),
	)
	return ds, nil
}

// Decode reads a dataset in the given format. Records are returned as
// written; the engine applies defaults.
func Decode(r io.Reader, format Format) (*model.Dataset, error) {
	var ds model.Dataset
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&ds); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewDecoder(r).Decode(&ds); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &ds, nil
}

// Encode writes a dataset in the given format
func Encode(w io.Writer, ds *model.Dataset, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ds)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(ds)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
