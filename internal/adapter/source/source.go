// Package source reads headered CSV datasets from a local file or an HTTP(S) URL.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/storm-altitude-map/internal/domain"
)

// ErrSourceUnavailable wraps every failure to reach or parse a dataset.
var ErrSourceUnavailable = errors.New("source unavailable")

// Loader implements pipeline.Source for a single dataset location.
type Loader struct {
	location   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLoader creates a loader for location, which is either an http(s) URL or
// a filesystem path. timeout bounds remote fetches.
func NewLoader(location string, timeout time.Duration, logger *slog.Logger) *Loader {
	return &Loader{
		location: location,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Location returns the configured dataset location.
func (l *Loader) Location() string {
	return l.location
}

// Rows reads the whole dataset. The first CSV record is the header; short
// rows leave trailing columns empty and extra cells are ignored.
func (l *Loader) Rows(ctx context.Context) ([]domain.RawRow, error) {
	start := time.Now()

	body, err := l.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, l.location, err)
	}
	defer body.Close()

	rows, err := ParseCSV(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, l.location, err)
	}

	l.logger.Info("source read",
		"location", l.location,
		"rows", len(rows),
		"duration", time.Since(start),
	)
	return rows, nil
}

func (l *Loader) open(ctx context.Context) (io.ReadCloser, error) {
	if isRemote(l.location) {
		return l.fetch(ctx)
	}
	f, err := os.Open(l.location)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (l *Loader) fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ParseCSV reads a headered CSV stream into rows keyed by header name.
// A stream with no header at all is an error.
func ParseCSV(r io.Reader) ([]domain.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []domain.RawRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if isBlank(record) {
			continue
		}
		row := make(domain.RawRow, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
