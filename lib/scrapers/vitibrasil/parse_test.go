package vitibrasil

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const productionPage = `<html><body>
<table class="tb_base tb_dados">
	<thead><tr><th>Produto</th><th>Quantidade (L.)</th></tr></thead>
	<tbody>
		<tr><td class="tb_item">VINHO DE MESA</td><td class="tb_item">169.762.429</td></tr>
		<tr><td class="tb_subitem">Tinto</td><td class="tb_subitem">139.320.884</td></tr>
		<tr><td class="tb_subitem">Branco</td><td class="tb_subitem">27.910.299</td></tr>
		<tr><td class="tb_item">SUCO</td><td class="tb_item">142.306</td></tr>
	</tbody>
	<tfoot class="tb_total"><tr><td>Total</td><td>457.792.870</td></tr></tfoot>
</table>
</body></html>`

func parseDoc(t *testing.T, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestParseDataTable(t *testing.T) {
	rows, err := ParseDataTable(parseDoc(t, productionPage))
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, rows, 4)

	require.Equal(t, "VINHO DE MESA", rows[0]["Produto"])
	require.Equal(t, "169.762.429", rows[0]["Quantidade (L.)"])
	require.Equal(t, "VINHO DE MESA", rows[0][KeyClassification])

	// subitems inherit the last item's classification
	require.Equal(t, "Tinto", rows[1]["Produto"])
	require.Equal(t, "VINHO DE MESA", rows[1][KeyClassification])
	require.Equal(t, "VINHO DE MESA", rows[2][KeyClassification])

	// a new item resets it
	require.Equal(t, "SUCO", rows[3][KeyClassification])

	// the tfoot subtotal row never shows up
	for _, r := range rows {
		require.NotEqual(t, "Total", r["Produto"])
	}
}

func TestParseDataTableMissingMarker(t *testing.T) {
	_, err := ParseDataTable(parseDoc(t, `<html><body><p>em manutenção</p></body></html>`))
	require.ErrorIs(t, err, ErrMalformedPage)

	// a plain table without the marker classes is still malformed
	_, err = ParseDataTable(parseDoc(t, `<html><body><table><tr><td>x</td></tr></table></body></html>`))
	require.ErrorIs(t, err, ErrMalformedPage)
}

func TestParseDataTableEmptyYear(t *testing.T) {
	page := `<html><body><table class="tb_base tb_dados">
		<thead><tr><th>Países</th><th>Quantidade (Kg)</th></tr></thead>
		<tbody></tbody>
	</table></body></html>`

	rows, err := ParseDataTable(parseDoc(t, page))
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, rows)
	require.False(t, errors.Is(err, ErrMalformedPage))
}

func TestParseDataTableExtraColumns(t *testing.T) {
	page := `<html><body><table class="tb_base tb_dados">
		<thead><tr><th>Países</th><th>Quantidade (Kg)</th><th>Valor (US$)</th></tr></thead>
		<tbody>
			<tr><td>Argentina</td><td>26.415.779</td><td>27.118.100</td><td>stray cell</td></tr>
		</tbody>
	</table></body></html>`

	rows, err := ParseDataTable(parseDoc(t, page))
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, rows, 1)
	require.Equal(t, "Argentina", rows[0]["Países"])
	require.Equal(t, "26.415.779", rows[0]["Quantidade (Kg)"])
	require.Equal(t, "27.118.100", rows[0]["Valor (US$)"])
}
