package vitidata

import (
	"strconv"
	"testing"

	"vitibrasil-backend/lib/scrapers/vitibrasil"
	"vitibrasil-backend/lib/textutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProduction(t *testing.T) {
	rows := []vitibrasil.RawRow{
		{"Produto": "VINHO DE MESA", "Quantidade (L.)": "169.762.429", "Ano": "2020"},
		{"Produto": "Tinto", "Quantidade (L.)": "139.320.884", "Ano": "2020", "Classificacao": "VINHO DE MESA"},
		{"Produto": "Total", "Quantidade (L.)": "457.792.870", "Ano": "2020"},
		{"Produto": "Suco de uva orgânico", "Quantidade (L.)": "nd", "Ano": "2020"},
	}

	records, stats := normalizeRows(CategoryProduction, 2020, rows)

	// the TOTAL row is an expected subtotal, not a quality drop
	require.Equal(t, 3, stats.considered)
	require.Equal(t, 1, stats.dropped)

	require.Len(t, records, 2)
	require.Equal(t, "VINHO DE MESA", records[0].Label)
	require.Equal(t, float64(169762429), records[0].Quantity)
	require.Equal(t, UnitLiters, records[0].Unit)
	require.Equal(t, "TINTO", records[1].Label)
	require.Equal(t, "VINHO DE MESA", records[1].Classification)
	for _, r := range records {
		require.Equal(t, CategoryProduction, r.Category)
		require.Equal(t, 2020, r.Year)
	}
}

func TestNormalizeDedupeKeepsLast(t *testing.T) {
	rows := []vitibrasil.RawRow{
		{"Produto": "Tinto", "Quantidade (L.)": "100", "Ano": "2020"},
		{"Produto": "Branco", "Quantidade (L.)": "50", "Ano": "2020"},
		{"Produto": "TINTO", "Quantidade (L.)": "200", "Ano": "2020"},
	}

	records, _ := normalizeRows(CategoryProduction, 2020, rows)

	require.Len(t, records, 2)
	require.Equal(t, "TINTO", records[0].Label)
	require.Equal(t, float64(200), records[0].Quantity)
	require.Equal(t, "BRANCO", records[1].Label)
}

func TestNormalizeInvariants(t *testing.T) {
	rows := []vitibrasil.RawRow{
		// year out of range
		{"Produto": "Tinto", "Quantidade (L.)": "100", "Ano": "1800"},
		// negative quantity
		{"Produto": "Branco", "Quantidade (L.)": "-5", "Ano": "2020"},
		// empty label
		{"Produto": "", "Quantidade (L.)": "100", "Ano": "2020"},
		// valid, year taken from the row itself
		{"Produto": "Rosado", "Quantidade (L.)": "7", "Ano": "2019"},
	}

	records, stats := normalizeRows(CategoryProduction, 2020, rows)

	require.Equal(t, 4, stats.considered)
	require.Equal(t, 3, stats.dropped)
	require.Len(t, records, 1)
	require.Equal(t, "ROSADO", records[0].Label)
	require.Equal(t, 2019, records[0].Year)
}

func TestNormalizeImportValueColumn(t *testing.T) {
	rows := []vitibrasil.RawRow{
		{"Países": "Argentina", "Quantidade (Kg)": "26.415.779", "Valor (US$)": "27.118.100", "Ano": "2020", "Botao": "VINHOS DE MESA"},
		{"Países": "Chile", "Quantidade (Kg)": "15.000", "Valor (US$)": "nd", "Ano": "2020", "Botao": "VINHOS DE MESA"},
	}

	records, stats := normalizeRows(CategoryImport, 2020, rows)

	require.Equal(t, 0, stats.dropped)
	require.Len(t, records, 2)
	require.Equal(t, UnitKilograms, records[0].Unit)
	require.Equal(t, float64(27118100), records[0].ValueUsd)
	require.Equal(t, "VINHOS DE MESA", records[0].SubOption)
	// a bad value cell zeroes the value without dropping the row
	require.Equal(t, float64(0), records[1].ValueUsd)
}

func rawRowsFromRecords(records []Record) []vitibrasil.RawRow {
	rows := make([]vitibrasil.RawRow, len(records))
	for i, r := range records {
		row := vitibrasil.RawRow{
			"Produto":                    r.Label,
			"Quantidade (L.)":            textutil.FormatQuantity(r.Quantity),
			vitibrasil.KeyYear:           strconv.Itoa(r.Year),
			vitibrasil.KeyClassification: r.Classification,
		}
		if r.SubOption != "" {
			row[vitibrasil.KeySubOption] = r.SubOption
		}
		rows[i] = row
	}
	return rows
}

func TestNormalizeIdempotent(t *testing.T) {
	rows := []vitibrasil.RawRow{
		{"Produto": "Vinho de mesa", "Quantidade (L.)": "169.762.429", "Ano": "2020"},
		{"Produto": "Suco de uva orgânico", "Quantidade (L.)": "1.234,56", "Ano": "2020", "Classificacao": "SUCO"},
		{"Produto": "Espumante", "Quantidade (L.)": "-", "Ano": "2020"},
	}

	once, _ := normalizeRows(CategoryProduction, 2020, rows)
	twice, stats := normalizeRows(CategoryProduction, 2020, rawRowsFromRecords(once))

	require.Equal(t, 0, stats.dropped)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("normalization is not idempotent (-once +twice):\n%s", diff)
	}
}
