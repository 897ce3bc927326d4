package plot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=plot
type Repository interface {
	CreatePlot(ctx context.Context, p *Plot) error
	GetPlot(ctx context.Context, id uuid.UUID) (*Plot, error)
	GetPlotForUpdate(ctx context.Context, id uuid.UUID) (*Plot, error)
	ListPlots(ctx context.Context) ([]*Plot, error)
	AdjustAvailability(ctx context.Context, id uuid.UUID, deltaSqm int) (*Plot, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo Repository
	tx   Transactor
}

func NewService(repo Repository, tx Transactor) *Service {
	return &Service{repo: repo, tx: tx}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Plot, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	p := newPlot(params)
	if err := s.repo.CreatePlot(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// CreateBatch creates all plots or none.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Plot, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for i, p := range params {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("plot %d: %w", i+1, err)
		}
	}

	plots := make([]*Plot, len(params))

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		for i, p := range params {
			plots[i] = newPlot(p)
			if err := s.repo.CreatePlot(ctx, plots[i]); err != nil {
				return fmt.Errorf("creating plot %q: %w", p.Name, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return plots, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Plot, error) {
	return s.repo.GetPlot(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Plot, error) {
	return s.repo.ListPlots(ctx)
}

func (s *Service) Status(ctx context.Context, id uuid.UUID) (*Status, error) {
	p, err := s.repo.GetPlot(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Status{
		PlotID:         p.ID,
		Name:           p.Name,
		TotalSqm:       p.TotalSqm,
		AvailableSqm:   p.AvailableSqm,
		SoldPercentage: p.SoldPercentage(),
	}, nil
}

// GetForUpdate reads the plot and, inside a transaction, locks its row until commit.
func (s *Service) GetForUpdate(ctx context.Context, id uuid.UUID) (*Plot, error) {
	return s.repo.GetPlotForUpdate(ctx, id)
}

// AdjustAvailability moves AvailableSqm by deltaSqm. It fails with ErrInsufficientInventory
// or ErrInventoryOverflow instead of leaving [0, TotalSqm], and must run inside the
// caller's transaction so the change commits together with the caller's other writes.
func (s *Service) AdjustAvailability(ctx context.Context, id uuid.UUID, deltaSqm int) (*Plot, error) {
	if deltaSqm == 0 {
		return s.repo.GetPlot(ctx, id)
	}

	return s.repo.AdjustAvailability(ctx, id, deltaSqm)
}

func newPlot(p CreateParams) *Plot {
	return &Plot{
		Name:         p.Name,
		TotalSqm:     p.TotalSqm,
		AvailableSqm: p.TotalSqm,
		PricePerSqm:  p.price(),
	}
}
