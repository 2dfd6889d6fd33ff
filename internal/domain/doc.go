// Package domain models lightning-mapping altitude points and the filters
// applied to them before they reach a map.
//
// # Data Source
//
// Points originate from Lightning Mapping Array (LMA) LYLOUT exports that have
// been flattened to CSV, e.g. filtered_LYLOUT_230924_210000_0600.csv. Each row
// is one VHF source located in three dimensions. Wind reports for the same day
// come from the NOAA Storm Prediction Center daily CSVs (230924_rpts_wind.csv)
// and are drawn as an overlay.
//
// # Column Conventions
//
// Altitude CSV:
//
//	lat, lon   decimal degrees (WGS-84)
//	alt        metres above mean sea level
//	time       optional; epoch milliseconds or an ISO-8601 string
//	<flag>     optional boolean-ish column, e.g. "overshooting"
//	Comments   optional free text
//
// Header lookup is exact first, then case-insensitive, so "Lat" and "lat" are
// both accepted. Rows whose lat, lon or alt is not a finite number are dropped
// and only counted. A time value that is numeric and greater than 1e10 is
// epoch milliseconds; anything else is tried as ISO-8601, and a failure leaves
// the point without a timestamp instead of dropping it.
//
// # Altitude Tiers
//
// Tiers follow the overshooting-top danger bands used by the original map
// legend. Lower bounds are inclusive, upper bounds exclusive:
//
//	low      alt < 12 km
//	medium   12 km <= alt < 14 km
//	high     14 km <= alt < 16 km   (danger)
//	extreme  alt >= 16 km
//
// # Filtering
//
// The visible subset is the conjunction of the tier selector, the recency
// window and the downsample cap, evaluated in that order. Points without a
// timestamp never match an active recency window. Downsampling is seeded per
// session, so an unchanged filter always yields the same subset in ingestion
// order. See [Compose].
package domain
