package domain

// NormalizeWindReports converts SPC wind report rows into overlay markers.
// Rows without a finite lat and lon are dropped and counted.
func NormalizeWindReports(rows []RawRow) ([]WindReport, int) {
	reports := make([]WindReport, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		lat, okLat := parseFinite(row.Get("lat"))
		lon, okLon := parseFinite(row.Get("lon"))
		if !okLat || !okLon {
			skipped++
			continue
		}
		reports = append(reports, WindReport{Lat: lat, Lon: lon, Comment: commentOf(row)})
	}
	return reports, skipped
}
