// Package history computes award-amount statistics for a NAICS code. It is
// a lesser instance of the resolution pattern: the same store and remote
// sources, but both are needed regardless of order, so they are fetched
// concurrently and joined.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"bidlens.app/resolver/common/logger"
	"bidlens.app/resolver/internal/model"
)

// StoreSource provides award amounts from the primary store.
type StoreSource interface {
	AwardAmounts(ctx context.Context, naics string) ([]float64, error)
}

// RemoteSource provides opportunity records from the external aggregator.
// Filtering happens client-side: the remote cannot filter these fields.
type RemoteSource interface {
	FetchAll(ctx context.Context, window model.SearchWindow) ([]model.ContractRecord, error)
}

// Stats summarizes award amounts for a NAICS code within a window.
type Stats struct {
	NAICS    string   `json:"naics"`
	Count    int      `json:"count"`
	Mean     float64  `json:"mean"`
	Variance float64  `json:"variance"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Sources  []string `json:"sources"`
}

type Service struct {
	store  StoreSource
	remote RemoteSource
}

func NewService(store StoreSource, remote RemoteSource) *Service {
	return &Service{store: store, remote: remote}
}

// Stats fans out to both sources concurrently and joins the results. One
// source failing degrades to the other; both failing is an error.
func (s *Service) Stats(ctx context.Context, naics string, window model.SearchWindow) (*Stats, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "history.stats"})

	var (
		storeAmounts, remoteAmounts []float64
		storeErr, remoteErr         error
	)

	// Neither fetch depends on the other, and a failure on one side must
	// not cancel the other, so errors are captured instead of returned.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		storeAmounts, storeErr = s.store.AwardAmounts(gctx, naics)
		if storeErr != nil {
			slog.WarnContext(gctx, "store award fetch failed", "error", storeErr)
		}
		return nil
	})
	g.Go(func() error {
		var records []model.ContractRecord
		records, remoteErr = s.remote.FetchAll(gctx, window)
		if remoteErr != nil {
			slog.WarnContext(gctx, "remote award fetch failed", "error", remoteErr)
			return nil
		}
		for _, rec := range records {
			if rec.NAICSCode == naics && rec.AwardAmount != nil {
				remoteAmounts = append(remoteAmounts, *rec.AwardAmount)
			}
		}
		return nil
	})
	_ = g.Wait()

	if storeErr != nil && remoteErr != nil {
		return nil, fmt.Errorf("all award sources failed: store: %v; remote: %v", storeErr, remoteErr)
	}

	stats := summarize(append(storeAmounts, remoteAmounts...))
	stats.NAICS = naics
	if storeErr == nil {
		stats.Sources = append(stats.Sources, "store")
	}
	if remoteErr == nil {
		stats.Sources = append(stats.Sources, "remote")
	}

	slog.InfoContext(ctx, "award statistics computed",
		"naics", naics,
		"window", window.String(),
		"count", stats.Count)
	return stats, nil
}

// summarize computes count, mean, population variance and the range.
func summarize(amounts []float64) *Stats {
	stats := &Stats{Count: len(amounts)}
	if len(amounts) == 0 {
		return stats
	}

	var sum float64
	stats.Min, stats.Max = amounts[0], amounts[0]
	for _, a := range amounts {
		sum += a
		if a < stats.Min {
			stats.Min = a
		}
		if a > stats.Max {
			stats.Max = a
		}
	}
	stats.Mean = sum / float64(len(amounts))

	var sq float64
	for _, a := range amounts {
		d := a - stats.Mean
		sq += d * d
	}
	stats.Variance = sq / float64(len(amounts))
	return stats
}
