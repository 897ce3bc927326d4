package csvplots

// Profile describes the column layout of a plot register export.
// Adding a new layout is adding a Profile to the profiles slice.
type Profile struct {
	Name     string
	NameCol  string
	SqmCol   string
	PriceCol string
	// European means amounts use "." for thousands and "," for decimals.
	European bool
}

func (p Profile) requiredCols() []string {
	return []string{p.NameCol, p.SqmCol, p.PriceCol}
}

// profiles is tried in order during header detection.
var profiles = []Profile{
	{
		Name:     "subx",
		NameCol:  "name",
		SqmCol:   "total_sqm",
		PriceCol: "price_per_sqm",
	},
	{
		Name:     "registry",
		NameCol:  "Plot",
		SqmCol:   "Size (sqm)",
		PriceCol: "Price per sqm",
	},
	{
		Name:     "cadastro",
		NameCol:  "Lote",
		SqmCol:   "Área (m²)",
		PriceCol: "Preço por m²",
		European: true,
	},
}
