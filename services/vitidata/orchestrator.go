package vitidata

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vitibrasil-backend/lib/scrapers/vitibrasil"
	"vitibrasil-backend/lib/snapshotstore"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Policy holds the fallback orchestrator's knobs. the upstream material
// gives no authoritative values so these stay configurable, with the
// defaults below.
type Policy struct {
	// extra attempts after the first, on transient failures only
	Retries uint64
	// first backoff interval, doubled per retry
	BackoffBase time.Duration
	// deadline for a single page attempt
	AttemptTimeout time.Duration
	// fail with DataQualityError when dropped/considered exceeds this
	DropThreshold float64
}

func DefaultPolicy() Policy {
	return Policy{
		Retries:        2,
		BackoffBase:    time.Millisecond * 500,
		AttemptTimeout: time.Second * 10,
		DropThreshold:  0.5,
	}
}

// per-request fallback state machine:
// TryingLive -> TryingSnapshot -> Normalizing -> Done | Failed.
// keeping it an explicit machine (instead of nested error handling) keeps
// the retry and threshold policy independently testable.
type fetchState int

const (
	stateTryingLive fetchState = iota
	stateTryingSnapshot
	stateNormalizing
	stateDone
	stateFailed
)

type fetchRun struct {
	svc       Service
	category  Category
	year      int
	subs      []SubOption
	subFilter string

	rows     []vitibrasil.RawRow
	source   Source
	attempts []SourceAttempt
	liveErr  error

	dataset Dataset
	err     error
}

func (s Service) runFetch(ctx context.Context, category Category, year int, subs []SubOption, subFilter string) (Dataset, error) {
	run := &fetchRun{
		svc:       s,
		category:  category,
		year:      year,
		subs:      subs,
		subFilter: subFilter,
	}

	for state := stateTryingLive; ; {
		switch state {
		case stateTryingLive:
			state = run.tryLive(ctx)
		case stateTryingSnapshot:
			state = run.trySnapshot(ctx)
		case stateNormalizing:
			state = run.normalize(ctx)
		case stateDone:
			return run.dataset, nil
		case stateFailed:
			return Dataset{}, run.err
		}
	}
}

func (r *fetchRun) record(ctx context.Context, method Source, err error) {
	outcome := "ok"
	if err != nil {
		outcome = err.Error()
	}
	r.attempts = append(r.attempts, SourceAttempt{
		Method:  method,
		Outcome: outcome,
		Time:    time.Now(),
	})
	trace.SpanFromContext(ctx).AddEvent("source attempt", trace.WithAttributes(
		attribute.String("method", string(method)),
		attribute.String("outcome", outcome),
	))
}

func (r *fetchRun) tryLive(ctx context.Context) fetchState {
	rows, err := r.svc.scrapeLive(ctx, r.category, r.year, r.subs)
	r.record(ctx, SourceLive, err)
	if err != nil {
		r.liveErr = err
		slog.WarnContext(
			ctx, "live fetch failed, trying snapshot",
			"category", r.category,
			"year", r.year,
			"err", err,
		)
		return stateTryingSnapshot
	}

	r.rows = rows
	r.source = SourceLive
	return stateNormalizing
}

func (r *fetchRun) trySnapshot(ctx context.Context) fetchState {
	rows, err := r.svc.snapshots.Get(ctx, string(r.category), r.year)
	r.record(ctx, SourceSnapshot, err)
	if err != nil {
		if errors.Is(err, snapshotstore.ErrCorrupt) {
			slog.ErrorContext(
				ctx, "snapshot is corrupt",
				"category", r.category,
				"year", r.year,
				"err", err,
			)
		}
		r.err = &DataUnavailableError{
			Category:    r.category,
			Year:        r.year,
			LiveErr:     r.liveErr,
			SnapshotErr: err,
		}
		return stateFailed
	}

	// a snapshot holds the whole category/year, apply the sub-option
	// filter the live path applied through its page requests
	if r.subFilter != "" {
		var kept []vitibrasil.RawRow
		for _, row := range rows {
			if row[vitibrasil.KeySubOption] == r.subFilter {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	r.rows = rows
	r.source = SourceSnapshot
	return stateNormalizing
}

func (r *fetchRun) normalize(ctx context.Context) fetchState {
	records, stats := normalizeRows(r.category, r.year, r.rows)

	if stats.considered > 0 &&
		float64(stats.dropped)/float64(stats.considered) > r.svc.policy.DropThreshold {
		slog.WarnContext(
			ctx, "too many rows dropped during normalization",
			"category", r.category,
			"year", r.year,
			"dropped", stats.dropped,
			"considered", stats.considered,
		)
		r.err = &DataQualityError{
			Category:   r.category,
			Year:       r.year,
			Dropped:    stats.dropped,
			Considered: stats.considered,
		}
		return stateFailed
	}

	r.dataset = Dataset{
		Category: r.category,
		Year:     r.year,
		Source:   r.source,
		Records:  records,
		Attempts: r.attempts,
	}
	return stateDone
}

// scrapeLive fetches every page of the category for the year. a failure on
// any page fails the whole live attempt; partial categories are worse than
// a clean fallback.
func (s Service) scrapeLive(ctx context.Context, category Category, year int, subs []SubOption) ([]vitibrasil.RawRow, error) {
	schema := registry[category]

	pages := []vitibrasil.PageRequest{}
	if len(subs) == 0 {
		pages = append(pages, vitibrasil.PageRequest{Option: schema.option, Year: year})
	}
	for _, sub := range subs {
		pages = append(pages, vitibrasil.PageRequest{
			Option:         schema.option,
			SubOption:      sub.Value,
			SubOptionLabel: sub.Label,
			Year:           year,
		})
	}

	var all []vitibrasil.RawRow
	for _, page := range pages {
		rows, err := s.fetchPageWithRetry(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

// fetchPageWithRetry applies the policy's bounded timeout and exponential
// backoff. only transient failures are retried; a structurally broken page
// is permanent, retrying it just wastes time.
func (s Service) fetchPageWithRetry(ctx context.Context, page vitibrasil.PageRequest) ([]vitibrasil.RawRow, error) {
	var rows []vitibrasil.RawRow

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.policy.BackoffBase

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.policy.AttemptTimeout)
		defer cancel()

		got, err := s.scraper.FetchPage(attemptCtx, page)
		if err == nil {
			rows = got
			return nil
		}
		if errors.Is(err, vitibrasil.ErrTransient) && ctx.Err() == nil {
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(bo, s.policy.Retries),
		ctx,
	))
	if err != nil {
		return nil, err
	}
	return rows, nil
}
