package vitidata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vitibrasil-backend/lib/scrapers/vitibrasil"
	"vitibrasil-backend/lib/snapshotstore"
	"vitibrasil-backend/lib/textutil"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/vitidata")

// Source tells callers whether a dataset is fresh or stale fallback data.
type Source string

const (
	SourceLive     Source = "live"
	SourceSnapshot Source = "snapshot"
)

// Record is the uniform, validated output shape shared by all categories.
type Record struct {
	Category       Category
	Year           int
	Label          string
	SubOption      string
	Classification string
	Quantity       float64
	Unit           Unit
	// only set for import/export
	ValueUsd float64
}

// SourceAttempt records one step of the fallback ladder for a single
// request. it lives only for the request's lifetime.
type SourceAttempt struct {
	Method  Source
	Outcome string
	Time    time.Time
}

// Dataset is owned by the caller once returned; nothing in the service
// holds a reference to it afterwards.
type Dataset struct {
	Category Category
	Year     int
	Source   Source
	Records  []Record
	Attempts []SourceAttempt
}

type Service struct {
	scraper   *vitibrasil.Client
	snapshots *snapshotstore.Store
	policy    Policy
}

func NewService(scraper *vitibrasil.Client, snapshots *snapshotstore.Store, policy Policy) Service {
	return Service{
		scraper:   scraper,
		snapshots: snapshots,
		policy:    policy,
	}
}

type Filters struct {
	// sub-option button label or value, exact match
	SubOption string
	// fuzzy product/country label match
	Product string
}

type FetchRequest struct {
	Category Category
	// zero means the current year
	Year    int
	Filters Filters
}

// Fetch is the single entry point the API layer calls. arguments are
// validated before any fallback logic runs; upstream failures are absorbed
// and only surface as DataUnavailableError when both the live and the
// snapshot path fail.
func (s Service) Fetch(ctx context.Context, req FetchRequest) (Dataset, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("category", string(req.Category)),
		attribute.Int("year", req.Year),
	)

	schema, ok := registry[req.Category]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, req.Category)
	}

	year := req.Year
	if year == 0 {
		year = time.Now().Year()
	}
	if !validYear(year) {
		return Dataset{}, fmt.Errorf(
			"%w: year %d out of range %d..%d",
			ErrInvalidArgument, year, MinYear, time.Now().Year(),
		)
	}

	subs := schema.subOptions
	subFilter := ""
	if req.Filters.SubOption != "" {
		sub := resolveSubOption(schema, req.Filters.SubOption)
		if sub == nil {
			return Dataset{}, fmt.Errorf(
				"%w: unknown sub-option %q for category %s",
				ErrInvalidArgument, req.Filters.SubOption, req.Category,
			)
		}
		subs = []SubOption{*sub}
		subFilter = sub.Label
	}

	dataset, err := s.runFetch(ctx, req.Category, year, subs, subFilter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return Dataset{}, err
	}

	if req.Filters.Product != "" {
		dataset.Records = filterByProduct(dataset.Records, req.Filters.Product)
	}

	span.SetAttributes(
		attribute.String("source", string(dataset.Source)),
		attribute.Int("records", len(dataset.Records)),
	)
	return dataset, nil
}

func resolveSubOption(schema categorySchema, query string) *SubOption {
	normalized := textutil.NormalizeLabel(query)
	for _, sub := range schema.subOptions {
		if sub.Value == strings.ToLower(strings.TrimSpace(query)) || sub.Label == normalized {
			return &sub
		}
	}
	return nil
}

const productSimilarityThreshold = 0.85

func filterByProduct(records []Record, query string) []Record {
	normalized := textutil.NormalizeLabel(query)

	var kept []Record
	for _, r := range records {
		if strings.Contains(r.Label, normalized) ||
			matchr.JaroWinkler(r.Label, normalized, false) >= productSimilarityThreshold {
			kept = append(kept, r)
		}
	}
	return kept
}
