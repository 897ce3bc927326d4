package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/subx/internal/importer/csvplots"
	"github.com/MrJamesThe3rd/subx/internal/importer/yamlseed"
	"github.com/MrJamesThe3rd/subx/internal/plot"
)

// PlotCreator is satisfied by *plot.Service.
type PlotCreator interface {
	CreateBatch(ctx context.Context, params []plot.CreateParams) ([]*plot.Plot, error)
}

type Service struct {
	plots   PlotCreator
	parsers map[Format]Importer
}

func NewService(plots PlotCreator) *Service {
	return &Service{
		plots: plots,
		parsers: map[Format]Importer{
			FormatCSV:  csvplots.NewParser(),
			FormatYAML: yamlseed.NewParser(),
		},
	}
}

// Parse reads the register without writing anything.
func (s *Service) Parse(format Format, r io.Reader) ([]plot.CreateParams, error) {
	p, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("unknown import format: %s", format)
	}

	return p.Parse(r)
}

// Import parses the register and creates every plot in it atomically.
func (s *Service) Import(ctx context.Context, format Format, r io.Reader) ([]*plot.Plot, error) {
	params, err := s.Parse(format, r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s register: %w", format, err)
	}

	if len(params) == 0 {
		return nil, fmt.Errorf("register contains no plots")
	}

	return s.plots.CreateBatch(ctx, params)
}
