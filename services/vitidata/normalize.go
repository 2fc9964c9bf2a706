package vitidata

import (
	"log/slog"
	"strconv"

	"vitibrasil-backend/lib/scrapers/vitibrasil"
	"vitibrasil-backend/lib/textutil"
)

type dropStats struct {
	// rows that failed coercion or an invariant
	dropped int
	// rows that were candidates for a record; excludes the site's own
	// TOTAL/subtotal rows, which are expected and don't indicate a
	// quality problem
	considered int
}

type dedupeKey struct {
	year      int
	subOption string
	label     string
}

// normalizeRows converts raw rows into normalized records. pure and
// deterministic: no I/O, output order follows input order. rows violating
// the record invariants (non-empty label, year in range, quantity >= 0,
// numeric quantity) are dropped and counted; duplicate (year, sub-option,
// label) rows keep the last occurrence, since the source pages occasionally
// repeat subtotal rows.
//
// idempotent: records rendered back to raw rows normalize to themselves.
func normalizeRows(category Category, year int, rows []vitibrasil.RawRow) ([]Record, dropStats) {
	schema := registry[category]

	var records []Record
	index := map[dedupeKey]int{}
	stats := dropStats{}

	for _, row := range rows {
		label := ""
		for _, key := range schema.labelKeys {
			if row[key] != "" {
				label = row[key]
				break
			}
		}
		label = textutil.NormalizeLabel(label)
		if label == "TOTAL" {
			continue
		}

		stats.considered++

		if label == "" {
			stats.dropped++
			continue
		}

		recordYear := year
		if rawYear := row[vitibrasil.KeyYear]; rawYear != "" {
			parsed, err := strconv.Atoi(rawYear)
			if err != nil {
				stats.dropped++
				continue
			}
			recordYear = parsed
		}
		if !validYear(recordYear) {
			stats.dropped++
			continue
		}

		rawQuantity, found := "", false
		for _, key := range schema.quantityKeys {
			if v, ok := row[key]; ok {
				rawQuantity, found = v, true
				break
			}
		}
		if !found {
			stats.dropped++
			continue
		}
		quantity, err := textutil.ParseQuantity(rawQuantity)
		if err != nil || quantity < 0 {
			slog.Debug(
				"dropping row",
				"category", category,
				"label", label,
				"quantity", rawQuantity,
				"err", err,
			)
			stats.dropped++
			continue
		}

		record := Record{
			Category:       category,
			Year:           recordYear,
			Label:          label,
			SubOption:      textutil.NormalizeLabel(row[vitibrasil.KeySubOption]),
			Classification: textutil.NormalizeLabel(row[vitibrasil.KeyClassification]),
			Quantity:       quantity,
			Unit:           schema.unit,
		}
		if schema.hasValueColumn {
			// the value column is informative only; a bad cell zeroes
			// it instead of dropping an otherwise valid row
			record.ValueUsd, _ = textutil.ParseQuantity(row["Valor (US$)"])
		}

		key := dedupeKey{year: record.Year, subOption: record.SubOption, label: record.Label}
		if at, ok := index[key]; ok {
			records[at] = record
			continue
		}
		index[key] = len(records)
		records = append(records, record)
	}

	return records, stats
}
