package vitibrasil

import (
	"fmt"

	"vitibrasil-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseDataTable extracts raw rows from the site's shared table layout.
//
// all five category pages render one `table.tb_base.tb_dados`. the first
// cell's class drives the classification column: `tb_item` starts a new
// classification block, `tb_subitem` belongs to the last seen item. rows
// under `tfoot.tb_total` are the site's own subtotals and are skipped.
// columns are matched by header text so extra or reordered columns don't
// break extraction.
func ParseDataTable(doc *goquery.Document) ([]RawRow, error) {
	table := doc.Find("table.tb_base.tb_dados").First()
	if table.Length() == 0 {
		return nil, ErrMalformedPage
	}

	headers := htmlutil.HeaderTexts(table)
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: data table has no header row", ErrMalformedPage)
	}

	rows := []RawRow{}
	currentItem := ""

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Closest("tfoot").Length() > 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() == 0 {
			// header row
			return
		}

		row := RawRow{}
		cells.Each(func(i int, td *goquery.Selection) {
			if i < len(headers) {
				row[headers[i]] = htmlutil.CellText(td)
			}
		})

		first := cells.First()
		switch {
		case htmlutil.HasClass(first, "tb_item"):
			currentItem = htmlutil.CellText(first)
			row[KeyClassification] = currentItem
		case htmlutil.HasClass(first, "tb_subitem"):
			row[KeyClassification] = currentItem
		default:
			row[KeyClassification] = ""
		}

		rows = append(rows, row)
	})

	return rows, nil
}
