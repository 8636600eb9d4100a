// Package output renders command results. Commands write exactly one
// document to stdout; JSON is the default so callers can parse it, YAML
// and table are for people.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"

	"github.com/agentstation/pimctl/pkg/errors"
)

// Format types for output.
type Format string

const (
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
	// FormatTable represents table output format.
	FormatTable Format = "table"
)

// ParseFormat converts string to Format with validation. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatYAML, FormatTable:
		return format, nil
	default:
		return "", errors.NewValidationError("format", s, fmt.Sprintf("invalid format %q: must be one of: json, yaml, table", s))
	}
}

// Data is a table: one header row and string cells.
type Data struct {
	Headers []string
	Rows    [][]string
}

// Tabular is implemented by every result that can print as a table.
type Tabular interface {
	TableData() Data
}

// Formatter writes one document.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format, JSON when unknown.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatTable:
		return &TableFormatter{}
	default:
		return &JSONFormatter{Indent: "  "}
	}
}

// JSONFormatter outputs JSON format.
type JSONFormatter struct {
	Indent string
}

// Format implements Formatter.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter outputs YAML format.
type YAMLFormatter struct{}

// Format implements Formatter.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// TableFormatter renders Tabular values with tablewriter. Anything else
// is printed as JSON.
type TableFormatter struct{}

// Format implements Formatter.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	var table Data
	switch v := data.(type) {
	case Data:
		table = v
	case Tabular:
		table = v.TableData()
	default:
		return (&JSONFormatter{Indent: "  "}).Format(w, data)
	}

	tw := tablewriter.NewTable(w)
	if len(table.Headers) > 0 {
		tw.Header(cells(table.Headers)...)
	}
	for _, row := range table.Rows {
		if err := tw.Append(cells(row)...); err != nil {
			return err
		}
	}
	return tw.Render()
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}
