package vitidata

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks caller mistakes: unknown category, out-of-range
// year, unknown sub-option. surfaced immediately, never retried or routed
// through the fallback path. the API layer should map it to a 400-class
// response.
var ErrInvalidArgument = errors.New("invalid argument")

// DataQualityError means normalization dropped more rows than the configured
// threshold allows; a mostly-empty dataset would be worse than an error.
type DataQualityError struct {
	Category   Category
	Year       int
	Dropped    int
	Considered int
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf(
		"%s/%d: dropped %d of %d rows during normalization",
		e.Category, e.Year, e.Dropped, e.Considered,
	)
}

// DataUnavailableError means both the live and the snapshot path failed.
// it carries both underlying causes for diagnostics and is the only upstream
// failure that ever reaches the caller; the API layer should map it to a
// 502-class response.
type DataUnavailableError struct {
	Category    Category
	Year        int
	LiveErr     error
	SnapshotErr error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf(
		"%s/%d unavailable: live: %s; snapshot: %s",
		e.Category, e.Year, e.LiveErr, e.SnapshotErr,
	)
}

func (e *DataUnavailableError) Unwrap() []error {
	return []error{e.LiveErr, e.SnapshotErr}
}
