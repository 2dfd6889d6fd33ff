// Command export applies a filter to a points CSV and writes the visible
// subset without starting the viewer.
//
// Usage:
//
//	go run ./cmd/export \
//	  -source data/filtered_LYLOUT_230924_210000_0600.csv \
//	  -tier 14-16 -recency 60 -now 2023-09-24T21:00:00Z \
//	  -out filtered_points.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/storm-altitude-map/internal/adapter/source"
	"github.com/couchcryptid/storm-altitude-map/internal/domain"
	"github.com/couchcryptid/storm-altitude-map/internal/export"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	src := flag.String("source", "", "points CSV path or http(s) URL")
	tier := flag.String("tier", string(domain.SelectAll), "tier selector: all, low, medium, high, extreme, or lt12, 12-14, 14-16, gt16")
	recency := flag.Int("recency", 0, "only keep points from the last N minutes (0 disables)")
	limit := flag.Int("cap", 0, "downsample to at most N points (0 disables)")
	seed := flag.Uint64("seed", 1, "downsample seed")
	nowFlag := flag.String("now", "", "reference time for -recency as RFC 3339 (default: current time)")
	flagCol := flag.String("flag-column", domain.DefaultFlagColumn, "boolean flag column name")
	timeout := flag.Duration("timeout", 30*time.Second, "source fetch timeout")
	out := flag.String("out", export.Filename, "output path, - for stdout")
	flag.Parse()

	if *src == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -source")
	}

	sel, err := domain.ParseTierSelector(*tier)
	if err != nil {
		return err
	}
	if *recency < 0 || *limit < 0 {
		return fmt.Errorf("%w: -recency and -cap must be >= 0", domain.ErrInvalidFilter)
	}
	now := time.Now().UTC()
	if *nowFlag != "" {
		now, err = time.Parse(time.RFC3339, *nowFlag)
		if err != nil {
			return fmt.Errorf("parse -now: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	rows, err := source.NewLoader(*src, *timeout, logger).Rows(context.Background())
	if err != nil {
		return err
	}
	norm := domain.Normalize(rows, domain.NormalizeOptions{FlagColumn: *flagCol})

	state := domain.FilterState{Tier: sel, RecencyMinutes: *recency, DownsampleCap: *limit}
	visible, summary := domain.Compose(norm.Points, state, now, *seed)

	if err := writeOutput(*out, visible); err != nil {
		return err
	}

	log.Printf("rows: %d, skipped: %d, visible: %d", len(rows), norm.Skipped, summary.Visible)
	for _, t := range domain.Tiers {
		log.Printf("  %-8s %d", t, summary.PerTier[t])
	}
	return nil
}

func writeOutput(path string, points []domain.PointRecord) error {
	if path == "-" {
		return writeTo(os.Stdout, points)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeTo(f, points); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func writeTo(w io.Writer, points []domain.PointRecord) error {
	if err := export.WriteCSV(w, points); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
