package importer

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/subx/internal/plot"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// Importer turns a plot register file into plot creation params.
type Importer interface {
	Parse(r io.Reader) ([]plot.CreateParams, error)
}

// FormatFromFilename picks the format from the file extension, defaulting to CSV.
func FormatFromFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatCSV
	}
}
