package yamlseed

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/subx/internal/plot"
)

// File is the seed layout:
//
//	plots:
//	  - name: Lekki Gardens Phase 1
//	    total_sqm: 500
//	    price_per_sqm: "5000.00"
type File struct {
	Plots []Entry `yaml:"plots"`
}

type Entry struct {
	Name        string `yaml:"name"`
	TotalSqm    int    `yaml:"total_sqm"`
	PricePerSqm string `yaml:"price_per_sqm"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]plot.CreateParams, error) {
	var f File

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}

		return nil, fmt.Errorf("decode seed: %w", err)
	}

	params := make([]plot.CreateParams, 0, len(f.Plots))

	for i, e := range f.Plots {
		price, err := decimal.NewFromString(e.PricePerSqm)
		if err != nil {
			return nil, fmt.Errorf("plot %d (%s): invalid price_per_sqm %q: %w", i+1, e.Name, e.PricePerSqm, err)
		}

		params = append(params, plot.CreateParams{
			Name:        e.Name,
			TotalSqm:    e.TotalSqm,
			PricePerSqm: price,
		})
	}

	return params, nil
}
