package csvplots_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/subx/internal/importer/csvplots"
)

func TestParser_SubxLayout(t *testing.T) {
	csv := `name,total_sqm,price_per_sqm
Lekki Gardens Phase 1,500,5000.00
Epe Hills,"1,200","3,250.50"
`

	params, err := csvplots.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "Lekki Gardens Phase 1", params[0].Name)
	assert.Equal(t, 500, params[0].TotalSqm)
	assert.Equal(t, "5000", params[0].PricePerSqm.String())

	assert.Equal(t, 1200, params[1].TotalSqm)
	assert.Equal(t, "3250.5", params[1].PricePerSqm.String())
}

func TestParser_RegistryWithPreamble(t *testing.T) {
	csv := `Land registry export;2026-09-30

Plot;Size (sqm);Price per sqm;Notes
Ibeju North;250;₦7,500.00;corner plot
;;;
Ibeju South;300;7500;
`

	params, err := csvplots.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "Ibeju North", params[0].Name)
	assert.Equal(t, 250, params[0].TotalSqm)
	assert.Equal(t, "7500", params[0].PricePerSqm.String())
	assert.Equal(t, "Ibeju South", params[1].Name)
}

func TestParser_CadastroWindows1252(t *testing.T) {
	content := "Lote;Área (m²);Preço por m²\nQuinta do Vale;1.000;2.500,75\n"

	encoded, err := charmap.Windows1252.NewEncoder().String(content)
	require.NoError(t, err)

	params, err := csvplots.NewParser().Parse(bytes.NewReader([]byte(encoded)))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "Quinta do Vale", params[0].Name)
	assert.Equal(t, 1000, params[0].TotalSqm)
	assert.Equal(t, "2500.75", params[0].PricePerSqm.String())
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{name: "UnknownHeader", csv: "a,b,c\n1,2,3\n"},
		{name: "FractionalSqm", csv: "name,total_sqm,price_per_sqm\nx,10.5,100\n"},
		{name: "BadPrice", csv: "name,total_sqm,price_per_sqm\nx,10,abc\n"},
		{name: "DuplicateName", csv: "name,total_sqm,price_per_sqm\nx,10,100\nx,20,100\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := csvplots.NewParser().Parse(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}
