package domain

import (
	"time"

	"github.com/golang/geo/s2"
)

// MarkerMode selects how the marker layer groups points.
type MarkerMode string

// Marker grouping modes. Spatial bucketing for MarkersClustered is done by the
// rendering collaborator.
const (
	MarkersDiscrete  MarkerMode = "discrete"
	MarkersClustered MarkerMode = "clustered"
)

// Heat weight band in metres. Weights saturate outside it.
const (
	heatFloor = 10000.0
	heatSpan  = 8000.0
)

// DefaultCenter is where the map opens when no points are visible.
var DefaultCenter = LatLon{Lat: 30.7, Lon: -95.2}

// DefaultZoom is the initial map zoom level.
const DefaultZoom = 10

// Presentation is the set of layers shown. The heatmap is an independent
// layer drawn in addition to the markers.
type Presentation struct {
	Markers MarkerMode `json:"markers"`
	Heatmap bool       `json:"heatmap"`
}

func (p Presentation) String() string {
	if p.Heatmap {
		return string(p.Markers) + "+heatmap"
	}
	return string(p.Markers)
}

// SelectPresentation derives the layers from the two toggles.
func SelectPresentation(clustering, heatmap bool) Presentation {
	mode := MarkersDiscrete
	if clustering {
		mode = MarkersClustered
	}
	return Presentation{Markers: mode, Heatmap: heatmap}
}

// HeatWeight maps altitude to a heat intensity in [0.5, 1.5].
func HeatWeight(altitude float64) float64 {
	f := (altitude - heatFloor) / heatSpan
	switch {
	case f < 0:
		f = 0
	case f > 1:
		f = 1
	}
	return 0.5 + f
}

// LatLon is a coordinate pair in decimal degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is the lat/lon box of the visible markers.
type Bounds struct {
	SouthWest LatLon `json:"south_west"`
	NorthEast LatLon `json:"north_east"`
}

// Marker is one classified point as drawn by the marker layer.
type Marker struct {
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	Altitude float64    `json:"altitude_m"`
	Tier     Tier       `json:"tier"`
	Color    string     `json:"color"`
	Size     int        `json:"size"`
	Time     *time.Time `json:"time,omitempty"`
	Flag     *bool      `json:"flag,omitempty"`
	Comment  string     `json:"comment,omitempty"`
}

// HeatPoint is a weighted sample for density rendering.
type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight float64 `json:"weight"`
}

// Frame is everything the rendering collaborator needs to draw the current view.
type Frame struct {
	Presentation Presentation     `json:"presentation"`
	Markers      []Marker         `json:"markers"`
	Heat         []HeatPoint      `json:"heat,omitempty"`
	Wind         []WindReport     `json:"wind,omitempty"`
	Summary      AggregateSummary `json:"summary"`
	Bounds       *Bounds          `json:"bounds,omitempty"`
	Center       LatLon           `json:"center"`
	Zoom         int              `json:"zoom"`
	RenderedAt   time.Time        `json:"rendered_at"`
}

// BuildFrame assembles a frame for the visible subset. The heat stream is
// only populated when the heatmap layer is on.
func BuildFrame(visible []PointRecord, wind []WindReport, p Presentation, summary AggregateSummary, at time.Time) Frame {
	f := Frame{
		Presentation: p,
		Markers:      make([]Marker, len(visible)),
		Wind:         wind,
		Summary:      summary,
		Center:       DefaultCenter,
		Zoom:         DefaultZoom,
		RenderedAt:   at,
	}
	if p.Heatmap {
		f.Heat = make([]HeatPoint, len(visible))
	}

	rect := s2.EmptyRect()
	for i, pt := range visible {
		f.Markers[i] = Marker{
			Lat:      pt.Lat,
			Lon:      pt.Lon,
			Altitude: pt.Altitude,
			Tier:     pt.Tier,
			Color:    ColorOf(pt.Tier),
			Size:     SizeOf(pt.Tier),
			Time:     pt.Time,
			Flag:     pt.Flag,
			Comment:  pt.Comment,
		}
		if p.Heatmap {
			f.Heat[i] = HeatPoint{Lat: pt.Lat, Lon: pt.Lon, Weight: HeatWeight(pt.Altitude)}
		}
		rect = rect.AddPoint(s2.LatLngFromDegrees(pt.Lat, pt.Lon))
	}

	if !rect.IsEmpty() {
		lo, hi := rect.Lo(), rect.Hi()
		f.Bounds = &Bounds{
			SouthWest: LatLon{Lat: lo.Lat.Degrees(), Lon: lo.Lng.Degrees()},
			NorthEast: LatLon{Lat: hi.Lat.Degrees(), Lon: hi.Lng.Degrees()},
		}
		c := rect.Center()
		f.Center = LatLon{Lat: c.Lat.Degrees(), Lon: c.Lng.Degrees()}
	}
	return f
}
