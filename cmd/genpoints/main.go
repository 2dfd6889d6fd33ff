// Command genpoints writes a synthetic LMA point CSV for local runs and
// fixtures. Output is deterministic for a given seed.
//
// Usage:
//
//	go run ./cmd/genpoints -n 2000 -seed 7 -out data/mock/points.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-altitude-map/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", 1000, "number of points")
	seed := flag.Uint64("seed", 1, "random seed")
	end := flag.String("end", "2023-09-24T21:00:00Z", "timestamp of the newest point (RFC 3339)")
	span := flag.Duration("span", 2*time.Hour, "time range covered by the points")
	lat := flag.Float64("lat", domain.DefaultCenter.Lat, "centre latitude")
	lon := flag.Float64("lon", domain.DefaultCenter.Lon, "centre longitude")
	radius := flag.Float64("radius", 0.5, "max offset from the centre in degrees")
	untimed := flag.Float64("untimed", 0.02, "fraction of points with no timestamp")
	out := flag.String("out", "", "output path")
	flag.Parse()

	if *out == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -n > 0")
	}
	endAt, err := time.Parse(time.RFC3339, *end)
	if err != nil {
		return fmt.Errorf("parse -end: %w", err)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed+1))
	records := make([][]string, 0, *n+1)
	records = append(records, []string{"time", "lat", "lon", "alt", domain.DefaultFlagColumn})

	counts := make(map[domain.Tier]int, len(domain.Tiers))
	for range *n {
		alt := max(12000+rng.NormFloat64()*2500, 500)
		counts[domain.Classify(alt)]++

		ts := ""
		if rng.Float64() >= *untimed {
			offset := time.Duration(rng.Int64N(int64(*span)))
			ts = strconv.FormatInt(endAt.Add(-offset).UnixMilli(), 10)
		}

		records = append(records, []string{
			ts,
			strconv.FormatFloat(*lat+(rng.Float64()*2-1)*(*radius), 'f', 5, 64),
			strconv.FormatFloat(*lon+(rng.Float64()*2-1)*(*radius), 'f', 5, 64),
			strconv.FormatFloat(alt, 'f', 1, 64),
			strconv.FormatBool(alt >= 16000 && rng.Float64() < 0.5),
		})
	}

	if err := writeCSV(*out, records); err != nil {
		return fmt.Errorf("writing points: %w", err)
	}

	log.Printf("wrote %d points to %s", *n, *out)
	for _, t := range domain.Tiers {
		log.Printf("  %-8s %d", t, counts[t])
	}
	return nil
}

func writeCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}
