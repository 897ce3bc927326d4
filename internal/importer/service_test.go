package importer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/subx/internal/importer"
	"github.com/MrJamesThe3rd/subx/internal/plot"
)

type recordingCreator struct {
	got []plot.CreateParams
}

func (r *recordingCreator) CreateBatch(_ context.Context, params []plot.CreateParams) ([]*plot.Plot, error) {
	r.got = params

	plots := make([]*plot.Plot, len(params))
	for i, p := range params {
		plots[i] = &plot.Plot{Name: p.Name, TotalSqm: p.TotalSqm, AvailableSqm: p.TotalSqm}
	}

	return plots, nil
}

func TestFormatFromFilename(t *testing.T) {
	assert.Equal(t, importer.FormatYAML, importer.FormatFromFilename("seed.YML"))
	assert.Equal(t, importer.FormatYAML, importer.FormatFromFilename("plots.yaml"))
	assert.Equal(t, importer.FormatCSV, importer.FormatFromFilename("plots.csv"))
	assert.Equal(t, importer.FormatCSV, importer.FormatFromFilename("register"))
}

func TestService_Import(t *testing.T) {
	creator := &recordingCreator{}
	svc := importer.NewService(creator)

	plots, err := svc.Import(context.Background(), importer.FormatCSV,
		strings.NewReader("name,total_sqm,price_per_sqm\np1,100,5000\n"))
	require.NoError(t, err)
	require.Len(t, plots, 1)
	assert.Equal(t, "p1", creator.got[0].Name)
}

func TestService_ImportEmptyRegister(t *testing.T) {
	svc := importer.NewService(&recordingCreator{})

	_, err := svc.Import(context.Background(), importer.FormatCSV, strings.NewReader("name,total_sqm,price_per_sqm\n"))
	assert.Error(t, err)
}

func TestService_UnknownFormat(t *testing.T) {
	svc := importer.NewService(&recordingCreator{})

	_, err := svc.Parse(importer.Format("xlsx"), strings.NewReader(""))
	assert.Error(t, err)
}
