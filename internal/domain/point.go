package domain

import (
	"errors"
	"time"
)

// ErrInvalidFilter is returned when a filter setter receives an out-of-range value.
var ErrInvalidFilter = errors.New("invalid filter value")

// RawRow is one headered CSV row as produced by the ingestion source.
type RawRow map[string]string

// PointRecord is a validated, classified altitude point. It is never modified
// after normalization.
type PointRecord struct {
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	Altitude float64    `json:"altitude_m"`
	Time     *time.Time `json:"time,omitempty"`
	Flag     *bool      `json:"flag,omitempty"`
	Tier     Tier       `json:"tier"`
	Comment  string     `json:"comment,omitempty"`
}

// WindReport is a storm report drawn as an overlay marker. Wind reports are
// not subject to the altitude filters.
type WindReport struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Comment string  `json:"comment,omitempty"`
}

// FilterState is the mutable filter configuration of a session.
type FilterState struct {
	Tier           TierSelector `json:"tier"`
	RecencyMinutes int          `json:"recency_minutes"`
	Clustering     bool         `json:"clustering"`
	Heatmap        bool         `json:"heatmap"`
	DownsampleCap  int          `json:"downsample_cap"` // 0 = no cap
}

// DefaultFilterState returns the configuration a session starts with.
func DefaultFilterState() FilterState {
	return FilterState{
		Tier:       SelectAll,
		Clustering: true,
	}
}

// AggregateSummary counts the collection and the visible subset.
type AggregateSummary struct {
	Total   int          `json:"total"`
	Visible int          `json:"visible"`
	PerTier map[Tier]int `json:"per_tier"`
}
