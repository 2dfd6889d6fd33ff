// Package export serializes the visible subset as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/storm-altitude-map/internal/domain"
)

// Filename is the attachment name used for downloads.
const Filename = "filtered_points.csv"

// TimeLayout renders timestamps as ISO-8601 in UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Header is the fixed column set. A trailing comment column is added only when
// a point in the subset carries a comment.
var Header = []string{"lat", "lon", "altitude_m", "tier", "time_iso"}

const commentColumn = "comment"

// WriteCSV writes points in the given order. Fields are quoted only when they
// contain a comma, a double quote or a line break. An empty subset produces
// the header alone.
func WriteCSV(w io.Writer, points []domain.PointRecord) error {
	withComment := hasComment(points)

	cw := csv.NewWriter(w)
	header := Header
	if withComment {
		header = append(append([]string(nil), Header...), commentColumn)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(header))
	for i, p := range points {
		record[0] = formatFloat(p.Lat)
		record[1] = formatFloat(p.Lon)
		record[2] = formatFloat(p.Altitude)
		record[3] = p.Tier.String()
		record[4] = ""
		if p.Time != nil {
			record[4] = p.Time.UTC().Format(TimeLayout)
		}
		if withComment {
			record[5] = p.Comment
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func hasComment(points []domain.PointRecord) bool {
	for _, p := range points {
		if p.Comment != "" {
			return true
		}
	}
	return false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
