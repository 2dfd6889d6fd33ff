package domain

import "time"

// Compose evaluates the filter state against the collection and returns the
// visible subset with its summary. Predicates run in order: tier, recency,
// downsample. The subset keeps ingestion order and is identical across calls
// with the same inputs. points is never modified.
func Compose(points []PointRecord, state FilterState, now time.Time, seed uint64) ([]PointRecord, AggregateSummary) {
	filtered := make([]PointRecord, 0, len(points))

	var cutoff time.Time
	recency := state.RecencyMinutes > 0
	if recency {
		cutoff = now.Add(-time.Duration(state.RecencyMinutes) * time.Minute)
	}

	for _, p := range points {
		if !state.Tier.Matches(p.Tier) {
			continue
		}
		// Points without a timestamp fail closed once a window is active.
		if recency && (p.Time == nil || p.Time.Before(cutoff)) {
			continue
		}
		filtered = append(filtered, p)
	}

	if state.DownsampleCap > 0 && len(filtered) > state.DownsampleCap {
		filtered = downsample(filtered, state.DownsampleCap, seed)
	}

	return filtered, Summarize(len(points), filtered)
}

// Summarize counts the visible subset per tier. Every tier is present in
// PerTier, zero when it has no members.
func Summarize(total int, visible []PointRecord) AggregateSummary {
	perTier := make(map[Tier]int, len(Tiers))
	for _, t := range Tiers {
		perTier[t] = 0
	}
	for _, p := range visible {
		perTier[p.Tier]++
	}
	return AggregateSummary{
		Total:   total,
		Visible: len(visible),
		PerTier: perTier,
	}
}
