package domain

import (
	"fmt"
	"strings"
)

// Tier is the ordinal altitude risk class of a point.
type Tier int

// Tiers in ascending altitude order.
const (
	TierLow Tier = iota
	TierMedium
	TierHigh
	TierExtreme
)

// Tier band lower bounds in metres.
const (
	mediumFloor  = 12000.0
	highFloor    = 14000.0
	extremeFloor = 16000.0
)

// Tiers lists every tier in ascending order.
var Tiers = []Tier{TierLow, TierMedium, TierHigh, TierExtreme}

type tierStyle struct {
	name  string
	color string
	size  int
}

var tierStyles = [...]tierStyle{
	TierLow:     {name: "low", color: "#fff600", size: 1},
	TierMedium:  {name: "medium", color: "#ff8f00", size: 3},
	TierHigh:    {name: "high", color: "#ff0505", size: 6},
	TierExtreme: {name: "extreme", color: "#c70039", size: 9},
}

// Classify maps an altitude in metres to its tier. Band lower bounds are
// inclusive, so exactly 12000 m is medium.
func Classify(altitude float64) Tier {
	switch {
	case altitude < mediumFloor:
		return TierLow
	case altitude < highFloor:
		return TierMedium
	case altitude < extremeFloor:
		return TierHigh
	default:
		return TierExtreme
	}
}

// ColorOf returns the marker colour for a tier.
func ColorOf(t Tier) string {
	if !t.valid() {
		return ""
	}
	return tierStyles[t].color
}

// SizeOf returns the marker radius for a tier.
func SizeOf(t Tier) int {
	if !t.valid() {
		return 0
	}
	return tierStyles[t].size
}

func (t Tier) valid() bool {
	return t >= TierLow && t <= TierExtreme
}

func (t Tier) String() string {
	if !t.valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierStyles[t].name
}

// MarshalText encodes the tier by name, which also keys AggregateSummary.PerTier in JSON.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("marshal tier %d: out of range", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier resolves a tier name (case-insensitive).
func ParseTier(s string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range Tiers {
		if tierStyles[t].name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

// TierSelector chooses which tier is visible. SelectAll disables the tier predicate.
type TierSelector string

// SelectAll matches every tier.
const SelectAll TierSelector = "all"

// legacySelectors are the option values of the original altitude dropdown.
var legacySelectors = map[string]TierSelector{
	"lt12":  "low",
	"12-14": "medium",
	"14-16": "high",
	"gt16":  "extreme",
}

// ParseTierSelector accepts "all", a tier name, or one of the legacy range
// values (lt12, 12-14, 14-16, gt16).
func ParseTierSelector(s string) (TierSelector, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == string(SelectAll) {
		return SelectAll, nil
	}
	if sel, ok := legacySelectors[v]; ok {
		return sel, nil
	}
	if _, err := ParseTier(v); err != nil {
		return "", fmt.Errorf("%w: tier selector %q", ErrInvalidFilter, s)
	}
	return TierSelector(v), nil
}

// SelectTier returns the selector that matches only t.
func SelectTier(t Tier) TierSelector {
	return TierSelector(t.String())
}

// Matches reports whether a point of tier t passes the selector. An empty
// selector behaves like SelectAll.
func (s TierSelector) Matches(t Tier) bool {
	if s == SelectAll || s == "" {
		return true
	}
	return string(s) == t.String()
}
