package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by -o.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormat reports whether f is one of text, json or yaml.
func ValidFormat(f string) bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// Printer centralizes output formatting for commands.
// - Respects --output (text|json|yaml)
// - Uses ColorConfig for styling when printing text
// - Provides helpers for common message types
type Printer struct {
	format string
	out    io.Writer
	Colors *ColorConfig
}

// NewPrinter writes to stdout.
func NewPrinter(format string) Printer {
	return NewPrinterTo(os.Stdout, format, NewColorConfig())
}

// NewPrinterTo writes to w with the given colors.
func NewPrinterTo(w io.Writer, format string, c *ColorConfig) Printer {
	if format == "" {
		format = FormatText
	}
	if c == nil {
		c = PlainColors()
	}
	return Printer{format: format, out: w, Colors: c}
}

// Format is the selected output format.
func (p Printer) Format() string { return p.format }

// Structured reports whether output should be machine-readable.
func (p Printer) Structured() bool { return p.format == FormatJSON || p.format == FormatYAML }

// Writer is the underlying destination.
func (p Printer) Writer() io.Writer { return p.out }

// Textf prints formatted text (always text path).
func (p Printer) Textf(format string, a ...any) { fmt.Fprintf(p.out, format, a...) }

// JSON pretty-prints a JSON value.
func (p Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML prints v as a YAML document.
func (p Printer) YAML(v any) error {
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Value prints v in the structured format selected by -o. Text printers
// fall back to JSON so callers can always emit something.
func (p Printer) Value(v any) error {
	if p.format == FormatYAML {
		return p.YAML(v)
	}
	return p.JSON(v)
}

// Success prints a success line with themed prefix.
func (p Printer) Success(msg string) {
	fmt.Fprintf(p.out, "%s %s\n", p.Colors.StatusIcon("success"), msg)
}

// Info prints an informational line.
func (p Printer) Info(msg string) {
	fmt.Fprintln(p.out, p.Colors.StatusIcon("info"), msg)
}

// Warn prints a warning line.
func (p Printer) Warn(msg string) {
	fmt.Fprintln(p.out, p.Colors.StatusIcon("warning"), msg)
}

// Error prints an error line.
func (p Printer) Error(msg string) {
	fmt.Fprintln(p.out, p.Colors.StatusIcon("error"), msg)
}

// Header prints a section header.
func (p Printer) Header(title string) {
	fmt.Fprintln(p.out, p.Colors.Header(" "+title+" "))
}

// Section prints a section header with separator
func (p Printer) Section(title string) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.Colors.SubHeader(title))
	fmt.Fprintln(p.out, p.Colors.Separator(40))
}

// KeyValueLine prints a key-value pair with proper formatting
func (p Printer) KeyValueLine(key, value, colorType string) {
	var colored string
	switch colorType {
	case "address":
		colored = p.Colors.Address(value)
	case "yellow":
		colored = p.Colors.Warning(value)
	case "green":
		colored = p.Colors.Success(value)
	case "dim":
		colored = p.Colors.Description(value)
	default:
		colored = p.Colors.Value(value)
	}
	fmt.Fprintf(p.out, "%s %s\n", p.Colors.Label(key+":"), colored)
}

// Table prints a table rendered by Table.
func (p Printer) Table(headers []string, rows [][]string) {
	fmt.Fprint(p.out, Table(p.Colors, headers, rows, nil))
}

// PrintError prints the structured error.
func (p Printer) PrintError(e ErrorMessage) {
	fmt.Fprintln(p.out, e.Format(p.Colors))
}
