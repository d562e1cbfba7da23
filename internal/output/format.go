// Package output writes reports as text, markdown, JSON or TOON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	toon "github.com/toon-format/toon-go"
)

// Format selects how a report is written.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
)

// ParseFormat maps a user-supplied name to a Format. Unknown names fall back to text.
func ParseFormat(s string) Format {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatMarkdown, FormatTOON:
		return f
	case "md":
		return FormatMarkdown
	default:
		return FormatText
	}
}

// Renderable is implemented by report parts that know their human layout.
// Structured formats serialize RenderData instead.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	RenderData() any
}

// Formatter writes values in one format to one destination.
type Formatter struct {
	format  Format
	w       io.Writer
	closer  io.Closer
	colored bool
}

// NewFormatter writes to stdout, or to the file at path when it is set.
// File output is never colored.
func NewFormatter(format Format, path string, colored bool) (*Formatter, error) {
	if path == "" {
		return NewWriterFormatter(format, os.Stdout, colored), nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	f := NewWriterFormatter(format, file, false)
	f.closer = file
	return f, nil
}

// NewWriterFormatter writes to w, which the caller owns.
func NewWriterFormatter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, w: w, colored: colored}
}

// Close closes the output file, if the formatter opened one.
func (f *Formatter) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

func (f *Formatter) Colored() bool { return f.colored }

// Output writes data. Renderable values use their own layout in text and
// markdown; anything else is written as JSON, fenced in markdown.
func (f *Formatter) Output(data any) error {
	r, renderable := data.(Renderable)
	if renderable && (f.format == FormatJSON || f.format == FormatTOON) {
		data = r.RenderData()
	}

	switch {
	case f.format == FormatTOON:
		return writeTOON(f.w, data)
	case f.format == FormatJSON:
		return writeJSON(f.w, data)
	case renderable && f.format == FormatMarkdown:
		return r.RenderMarkdown(f.w)
	case renderable:
		return r.RenderText(f.w, f.colored)
	case f.format == FormatMarkdown:
		if _, err := io.WriteString(f.w, "```json\n"); err != nil {
			return err
		}
		if err := writeJSON(f.w, data); err != nil {
			return err
		}
		_, err := io.WriteString(f.w, "```\n")
		return err
	default:
		return writeJSON(f.w, data)
	}
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeTOON(w io.Writer, data any) error {
	out, err := MarshalTOON(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

// MarshalTOON encodes data as TOON. Values pass through their JSON form
// first, so TOON keys and custom marshalers match the JSON output.
func MarshalTOON(data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return toon.Marshal(tree, toon.WithIndent(2))
}
