package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestGetText(t *testing.T) {
	doc := parseDoc(t, `<html><body><table><tr><td>Vinho <b>de</b> mesa</td></tr></table></body></html>`)
	require.Equal(t, "Vinho de mesa", GetText(doc.Find("td").Nodes[0]))
}

func TestCellText(t *testing.T) {
	doc := parseDoc(t, `<html><body><table>
		<tr><td>  Quantidade
			(L.)  </td></tr>
		<tr><td><a href="#">Vinho &nbsp; de mesa</a></td></tr>
	</table></body></html>`)

	cells := doc.Find("td")
	require.Equal(t, "Quantidade (L.)", CellText(cells.Eq(0)))
	// nested elements and non-printable entities are flattened
	require.Equal(t, "Vinho de mesa", CellText(cells.Eq(1)))
}

func TestHeaderTexts(t *testing.T) {
	doc := parseDoc(t, `<html><body><table>
		<thead><tr><th>Países</th><th>Quantidade (Kg)</th></tr></thead>
	</table></body></html>`)

	require.Equal(
		t,
		[]string{"Países", "Quantidade (Kg)"},
		HeaderTexts(doc.Find("table")),
	)
}

func TestHasClass(t *testing.T) {
	doc := parseDoc(t, `<html><body><table><tr><td class="tb_item tb_first">x</td></tr></table></body></html>`)
	cell := doc.Find("td")
	require.True(t, HasClass(cell, "tb_item"))
	require.True(t, HasClass(cell, "tb_first"))
	require.False(t, HasClass(cell, "tb"))
}
