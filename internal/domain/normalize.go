package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultFlagColumn is the boolean column read into PointRecord.Flag.
const DefaultFlagColumn = "overshooting"

// epochMillisFloor separates epoch milliseconds from other numeric time values.
const epochMillisFloor = 1e10

// epochMillisCeil is the last millisecond of year 9999. Larger values would
// overflow int64 or fall outside ISO-8601 and are treated as unparseable.
var epochMillisCeil = float64(time.Date(9999, 12, 31, 23, 59, 59, 999_000_000, time.UTC).UnixMilli())

// isoLayouts are tried in order for non-numeric time values.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeOptions controls column mapping for Normalize.
type NormalizeOptions struct {
	FlagColumn string
}

// NormalizeResult holds the points that survived normalization and the number
// of rows dropped for bad coordinates or altitude.
type NormalizeResult struct {
	Points  []PointRecord
	Skipped int
}

// Normalize converts raw rows into classified points, preserving row order.
// Rows whose lat, lon or alt is not a finite number are dropped and counted.
func Normalize(rows []RawRow, opts NormalizeOptions) NormalizeResult {
	flagColumn := opts.FlagColumn
	if flagColumn == "" {
		flagColumn = DefaultFlagColumn
	}

	res := NormalizeResult{Points: make([]PointRecord, 0, len(rows))}
	for _, row := range rows {
		lat, okLat := parseFinite(row.Get("lat"))
		lon, okLon := parseFinite(row.Get("lon"))
		alt, okAlt := parseFinite(row.Get("alt"))
		if !okLat || !okLon || !okAlt {
			res.Skipped++
			continue
		}

		res.Points = append(res.Points, PointRecord{
			Lat:      lat,
			Lon:      lon,
			Altitude: alt,
			Time:     parseTimestamp(row.Get("time")),
			Flag:     parseFlag(row.Get(flagColumn)),
			Tier:     Classify(alt),
			Comment:  commentOf(row),
		})
	}
	return res
}

// Get returns the value for key, falling back to a case-insensitive match on
// trimmed header names. Missing keys yield "".
func (r RawRow) Get(key string) string {
	if v, ok := r[key]; ok {
		return v
	}
	for k, v := range r {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return v
		}
	}
	return ""
}

func commentOf(row RawRow) string {
	if c := strings.TrimSpace(row.Get("Comments")); c != "" {
		return c
	}
	return strings.TrimSpace(row.Get("comment"))
}

// parseFinite parses s as a float and rejects NaN and infinities.
func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseTimestamp reads epoch milliseconds (numeric values above 1e10 up to
// year 9999) or an ISO-8601 string. Anything else yields nil.
func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v > epochMillisFloor && v <= epochMillisCeil {
			t := time.UnixMilli(int64(v)).UTC()
			return &t
		}
		return nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func parseFlag(s string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "t":
		v = true
	case "false", "0", "no", "n", "f":
		v = false
	default:
		return nil
	}
	return &v
}
