package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/graph"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatDOT  Format = "dot"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatJSON, FormatYAML, FormatDOT}

// ParseFormat validates a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatDOT:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", nerrors.New(nerrors.ErrCodeInvalidInput, "unknown format %q (want json, yaml or dot)", s)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode renders v in format f.
func Encode(v any, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatJSON:
		err = WriteJSON(&buf, v)
	case FormatYAML:
		err = WriteYAML(&buf, v)
	case FormatDOT:
		g, ok := v.(*graph.Graph)
		if !ok {
			return nil, nerrors.New(nerrors.ErrCodeUnsupported, "dot output is only available for the graph projection")
		}
		_, err = io.WriteString(&buf, ToDOT(g, DOTOptions{}))
	default:
		return nil, nerrors.New(nerrors.ErrCodeInvalidInput, "unknown format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON encodes v as indented JSON and writes it to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteYAML encodes v as YAML and writes it to w.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}

// ExportFile writes data to path atomically: the bytes go to a temporary
// file next to path, which is renamed over path once fully written. On
// error path is left untouched.
func ExportFile(data []byte, path string) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
