package vitidata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RefreshSnapshots scrapes every category live for the given year and
// overwrites the stored snapshots. this is the only writer of the snapshot
// store: Fetch never writes, so a cancelled request can't leave a partial
// snapshot behind. a snapshot is written only after the whole category
// scraped successfully.
func (s Service) RefreshSnapshots(ctx context.Context, year int) error {
	var errlist []error

	for _, category := range Categories() {
		schema := registry[category]

		rows, err := s.scrapeLive(ctx, category, year, schema.subOptions)
		if err != nil {
			slog.WarnContext(
				ctx, "skipping snapshot refresh",
				"category", category,
				"year", year,
				"err", err,
			)
			errlist = append(errlist, fmt.Errorf("%s/%d: %w", category, year, err))
			continue
		}

		err = s.snapshots.Put(ctx, string(category), year, rows)
		if err != nil {
			errlist = append(errlist, fmt.Errorf("%s/%d: %w", category, year, err))
			continue
		}
		slog.InfoContext(
			ctx, "snapshot refreshed",
			"category", category,
			"year", year,
			"rows", len(rows),
		)
	}

	return errors.Join(errlist...)
}

// SeedSnapshots refreshes a span of years, oldest first. meant for manual
// seeding through the CLI, not for the serving loop.
func (s Service) SeedSnapshots(ctx context.Context, fromYear, toYear int) error {
	if fromYear > toYear || !validYear(fromYear) || !validYear(toYear) {
		return fmt.Errorf("%w: bad year range %d..%d", ErrInvalidArgument, fromYear, toYear)
	}

	var errlist []error
	for year := fromYear; year <= toYear; year++ {
		if err := s.RefreshSnapshots(ctx, year); err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}

// SnapshotDaemon periodically refreshes the current year's snapshots until
// the context is cancelled.
func (s Service) SnapshotDaemon(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.RefreshSnapshots(ctx, time.Now().Year())
			if err != nil {
				slog.ErrorContext(ctx, "snapshot refresh", "err", err)
			}
		}
	}
}
