package plots

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/subx/internal/plot"
)

type plotResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	TotalSqm     int             `json:"totalSqm"`
	AvailableSqm int             `json:"availableSqm"`
	PricePerSqm  decimal.Decimal `json:"pricePerSqm"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type statusResponse struct {
	PlotID         uuid.UUID       `json:"plotId"`
	Name           string          `json:"name"`
	TotalSqm       int             `json:"totalSqm"`
	AvailableSqm   int             `json:"availableSqm"`
	SoldPercentage decimal.Decimal `json:"soldPercentage"`
}

type importResponse struct {
	Imported int            `json:"imported"`
	Plots    []plotResponse `json:"plots"`
}

func toResponse(p *plot.Plot) plotResponse {
	return plotResponse{
		ID:           p.ID,
		Name:         p.Name,
		TotalSqm:     p.TotalSqm,
		AvailableSqm: p.AvailableSqm,
		PricePerSqm:  p.PricePerSqm,
		CreatedAt:    p.CreatedAt,
	}
}

func toResponses(plots []*plot.Plot) []plotResponse {
	out := make([]plotResponse, 0, len(plots))
	for _, p := range plots {
		out = append(out, toResponse(p))
	}

	return out
}
