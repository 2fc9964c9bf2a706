package vitidata

import (
	"fmt"
	"strings"
	"time"
)

// Category is one of the five viticulture statistic domains published by
// the upstream site.
type Category string

const (
	CategoryProduction        Category = "production"
	CategoryProcessing        Category = "processing"
	CategoryCommercialization Category = "commercialization"
	CategoryImport            Category = "import"
	CategoryExport            Category = "export"
)

type Unit string

const (
	UnitLiters    Unit = "L"
	UnitKilograms Unit = "kg"
)

// SubOption is one of the site's "subopcao" buttons that split a category
// page into product groups.
type SubOption struct {
	Value string
	Label string
}

type categorySchema struct {
	// the site's "opcao" query value for this category's page
	option string
	unit   Unit
	// candidate column headers for the record label, in priority order.
	// the "SEM CLASSIFICACAO" processing page drops the Cultivar column
	// and publishes "Sem definição" instead.
	labelKeys    []string
	quantityKeys []string
	// import/export pages carry a US$ value column
	hasValueColumn bool
	subOptions     []SubOption
	// names of the site's own CSV downloads, usable to seed snapshots
	csvDownloads []string
}

// read-only after initialization. option values, sub-option buttons and
// column headers mirror the upstream site.
var registry = map[Category]categorySchema{
	CategoryProduction: {
		option:       "opt_02",
		unit:         UnitLiters,
		labelKeys:    []string{"Produto"},
		quantityKeys: []string{"Quantidade (L.)", "Quantidade"},
		csvDownloads: []string{"Producao.csv"},
	},
	CategoryProcessing: {
		option:       "opt_03",
		unit:         UnitKilograms,
		labelKeys:    []string{"Cultivar", "Sem definição"},
		quantityKeys: []string{"Quantidade (Kg)", "Quantidade"},
		subOptions: []SubOption{
			{Value: "subopt_01", Label: "VINIFERAS"},
			{Value: "subopt_02", Label: "AMERICANAS E HIBRIDAS"},
			{Value: "subopt_03", Label: "UVAS DE MESA"},
			{Value: "subopt_04", Label: "SEM CLASSIFICACAO"},
		},
		csvDownloads: []string{
			"ProcessaViniferas.csv", "ProcessaAmericanas.csv",
			"ProcessaMesa.csv", "ProcessaSemclass.csv",
		},
	},
	CategoryCommercialization: {
		option:       "opt_04",
		unit:         UnitLiters,
		labelKeys:    []string{"Produto"},
		quantityKeys: []string{"Quantidade (L.)", "Quantidade"},
		csvDownloads: []string{"Comercio.csv"},
	},
	CategoryImport: {
		option:         "opt_05",
		unit:           UnitKilograms,
		labelKeys:      []string{"Países"},
		quantityKeys:   []string{"Quantidade (Kg)", "Quantidade"},
		hasValueColumn: true,
		subOptions: []SubOption{
			{Value: "subopt_01", Label: "VINHOS DE MESA"},
			{Value: "subopt_02", Label: "ESPUMANTES"},
			{Value: "subopt_03", Label: "UVAS FRESCAS"},
			{Value: "subopt_04", Label: "UVAS PASSAS"},
			{Value: "subopt_05", Label: "SUCO DE UVA"},
		},
		csvDownloads: []string{
			"ImpVinhos.csv", "ImpEspumantes.csv", "ImpFrescas.csv",
			"ImpPassas.csv", "ImpSuco.csv",
		},
	},
	CategoryExport: {
		option:         "opt_06",
		unit:           UnitKilograms,
		labelKeys:      []string{"Países"},
		quantityKeys:   []string{"Quantidade (Kg)", "Quantidade"},
		hasValueColumn: true,
		subOptions: []SubOption{
			{Value: "subopt_01", Label: "VINHOS DE MESA"},
			{Value: "subopt_02", Label: "ESPUMANTES"},
			{Value: "subopt_03", Label: "UVAS FRESCAS"},
			{Value: "subopt_04", Label: "SUCO DE UVA"},
		},
		csvDownloads: []string{
			"ExpVinho.csv", "ExpEspumantes.csv", "ExpUva.csv", "ExpSuco.csv",
		},
	},
}

// Categories returns every known category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryProduction,
		CategoryProcessing,
		CategoryCommercialization,
		CategoryImport,
		CategoryExport,
	}
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[c]; !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, s)
	}
	return c, nil
}

// the upstream site's coverage starts in 1970.
const MinYear = 1970

func validYear(year int) bool {
	return year >= MinYear && year <= time.Now().Year()
}
