package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes the full report. Decimals are encoded as strings
// and keep their exact, unrounded value.
type JSONFormatter struct {
	Indent bool
}

// Format returns the format type
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render encodes the report
func (f *JSONFormatter) Render(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(r)
}
