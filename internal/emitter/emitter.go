// Package emitter renders a generated OpenAPI document to disk as JSON or
// YAML.
package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Format is the serialization used for the output file.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatFor picks YAML for .yaml/.yml paths and JSON for anything else.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Options controls how the document is written.
type Options struct {
	Out    string // required; output file path
	DryRun bool   // don't write, only plan
}

// PlannedFile describes the file the emitter intends to write.
type PlannedFile struct {
	Path   string
	Format Format
	Size   int
	Mode   os.FileMode
}

// Result reports what was (or would be) written.
type Result struct {
	Planned PlannedFile
	Written bool
}

// Emit serializes doc according to the extension of opts.Out and writes it.
func Emit(ctx context.Context, doc *openapi3.T, opts Options) (*Result, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("emitter: nil document")
	}
	if strings.TrimSpace(opts.Out) == "" {
		return nil, fmt.Errorf("emitter: Out is required")
	}
	format := FormatFor(opts.Out)
	content, err := Render(doc, format)
	if err != nil {
		return nil, err
	}
	res := &Result{Planned: PlannedFile{Path: opts.Out, Format: format, Size: len(content), Mode: 0o644}}
	if opts.DryRun {
		return res, nil
	}
	if err := writeFile(opts.Out, content); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

// Render returns the serialized document. JSON uses two-space indentation.
func Render(doc *openapi3.T, format Format) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	if format == JSON {
		return append(raw, '\n'), nil
	}

	// Going through a node keeps the key order of the JSON rendering.
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("convert to yaml: %w", err)
	}
	blockStyle(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// blockStyle drops the flow and quoting styles inherited from JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func writeFile(path string, content []byte) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// atomic write via temp file + rename
	tmp := abs + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", path, err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
