package vitibrasil

import "errors"

// RawRow is one loosely-typed table row exactly as extracted from a page or
// a stored snapshot. keys are the page's own column headers plus the keys
// below, values are untouched cell text. no invariants are enforced here,
// that is the normalizer's job.
type RawRow map[string]string

// keys the client injects on top of the page's columns. names follow the
// upstream site's vocabulary so snapshots written from either the live pages
// or the site's CSV downloads line up.
const (
	KeyYear           = "Ano"
	KeyClassification = "Classificacao"
	KeySubOption      = "Botao"
)

// ErrTransient marks failures worth retrying: network errors, timeouts and
// 5xx responses. everything else from the upstream site is structural and
// retrying it only wastes time.
var ErrTransient = errors.New("transient upstream failure")

// ErrMalformedPage means the page came back without the expected data table
// marker. a present marker with zero data rows is not malformed, it is a
// legitimately empty year.
var ErrMalformedPage = errors.New("expected data table is missing")
