package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-altitude-map/internal/domain"
	"github.com/couchcryptid/storm-altitude-map/internal/observability"
)

// Source produces the raw rows of one dataset.
type Source interface {
	Rows(ctx context.Context) ([]domain.RawRow, error)
}

// LoadResult is the normalized collection for a session.
type LoadResult struct {
	Points  []domain.PointRecord
	Skipped int
	Wind    []domain.WindReport
}

// Load reads and normalizes the altitude points and, when wind is non-nil,
// the wind report overlay. A points source failure returns an error and no
// partial collection. A wind source failure only drops the overlay.
func Load(ctx context.Context, points, wind Source, opts domain.NormalizeOptions, logger *slog.Logger, metrics *observability.Metrics) (LoadResult, error) {
	rows, err := points.Rows(ctx)
	if err != nil {
		metrics.SessionLoaded.Set(0)
		return LoadResult{}, fmt.Errorf("load points: %w", err)
	}

	norm := domain.Normalize(rows, opts)
	metrics.RowsIngested.Add(float64(len(norm.Points)))
	metrics.RowsSkipped.Add(float64(norm.Skipped))
	if norm.Skipped > 0 {
		logger.Warn("skipped rows with invalid coordinates or altitude",
			"skipped", norm.Skipped,
			"rows", len(rows),
		)
	}

	res := LoadResult{Points: norm.Points, Skipped: norm.Skipped}

	if wind != nil {
		windRows, err := wind.Rows(ctx)
		if err != nil {
			logger.Warn("wind overlay unavailable", "error", err)
		} else {
			reports, skipped := domain.NormalizeWindReports(windRows)
			res.Wind = reports
			if skipped > 0 {
				logger.Warn("skipped wind reports with invalid coordinates", "skipped", skipped)
			}
		}
	}

	metrics.SessionLoaded.Set(1)
	logger.Info("points loaded",
		"points", len(res.Points),
		"skipped", res.Skipped,
		"wind_reports", len(res.Wind),
	)
	return res, nil
}
