package csvplots

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads a price. Plain amounts may use "," as a thousands separator
// ("5,000.50"); European ones use "." for thousands and "," for decimals ("5.000,50").
// Currency symbols and spaces are ignored.
func parseAmount(s string, european bool) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}

		return -1
	}, s)

	if european {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}

// parseSqm reads a whole number of square meters, accepting thousands separators.
func parseSqm(s string, european bool) (int, error) {
	d, err := parseAmount(s, european)
	if err != nil {
		return 0, err
	}

	if !d.Equal(d.Truncate(0)) {
		return 0, errFractionalSqm
	}

	return int(d.IntPart()), nil
}
