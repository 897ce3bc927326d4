package csvplots

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	enc "github.com/MrJamesThe3rd/subx/internal/encoding"
	"github.com/MrJamesThe3rd/subx/internal/plot"
)

var errFractionalSqm = errors.New("sqm must be a whole number")

// Parser reads plot register CSV exports. The delimiter (comma or semicolon) and the
// column layout are detected from the header row.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]plot.CreateParams, error) {
	utf8r, _, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read register: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.Comma = sniffDelimiter(string(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching plot register format found: expected columns for subx, registry, or cadastro")
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// sniffDelimiter picks ';' when the first non-empty line has more semicolons than commas.
func sniffDelimiter(content string) rune {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}

		return ','
	}

	return ','
}

type colIndex map[string]int

// detectProfile scans rows for a header matching a known profile. Column names are
// compared case-insensitively so hand-edited registers still match.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[strings.ToLower(name)]; !ok {
			return false
		}
	}

	return true
}

// parseRows converts data rows. Blank rows and footer rows without a name are skipped;
// a named row with a bad size or price fails the whole file.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]plot.CreateParams, error) {
	nameIdx := cols[strings.ToLower(p.NameCol)]
	sqmIdx := cols[strings.ToLower(p.SqmCol)]
	priceIdx := cols[strings.ToLower(p.PriceCol)]

	seen := make(map[string]int)

	var params []plot.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		name := cellValue(row, nameIdx)
		if name == "" {
			continue
		}

		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("row %d: plot %q already listed on row %d", rowNum, name, prev)
		}

		seen[name] = rowNum

		sqm, err := parseSqm(cellValue(row, sqmIdx), p.European)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid size %q: %w", rowNum, cellValue(row, sqmIdx), err)
		}

		price, err := parseAmount(cellValue(row, priceIdx), p.European)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q: %w", rowNum, cellValue(row, priceIdx), err)
		}

		params = append(params, plot.CreateParams{
			Name:        name,
			TotalSqm:    sqm,
			PricePerSqm: price,
		})
	}

	return params, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
