package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smartcity/crimedash/internal/domain"
)

// Column names of the LA crime export
const (
	ColID      = "DR_NO"
	ColDate    = "DATE OCC"
	ColTime    = "TIME OCC"
	ColArea    = "AREA NAME"
	ColCrime   = "Crm Cd Desc"
	ColStatus  = "Status Desc"
	ColAge     = "Vict Age"
	ColSex     = "Vict Sex"
	ColDescent = "Vict Descent"
	ColWeapon  = "Weapon Desc"
	ColLat     = "LAT"
	ColLon     = "LON"
)

var requiredColumns = []string{
	ColDate, ColTime, ColArea, ColCrime, ColStatus,
	ColAge, ColSex, ColDescent, ColWeapon, ColLat, ColLon,
}

// ErrMissingColumn is returned when the header lacks a required column
var ErrMissingColumn = errors.New("missing required column")

var dateLayouts = []string{
	"01/02/2006 03:04:05 PM",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// Load reads and cleans the incident file at path
func Load(path string) (*domain.Dataset, domain.LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.LoadStats{}, fmt.Errorf("dataset: failed to open %s: %w", path, err)
	}
	defer f.Close()

	ds, stats, err := LoadReader(f)
	if err != nil {
		return nil, stats, err
	}

	log.Printf("Loaded %d incidents from %s (%d rows read, %d dropped without coordinates, %d dropped without victim age, %d dropped without time)",
		stats.Kept, path, stats.RowsRead, stats.DroppedCoordinates, stats.DroppedAge, stats.DroppedTime)
	return ds, stats, nil
}

// LoadReader parses a delimited incident table. Rows without coordinates,
// without a numeric victim age or without a numeric time are dropped; an
// unparseable date fails the whole load.
func LoadReader(r io.Reader) (*domain.Dataset, domain.LoadStats, error) {
	var stats domain.LoadStats

	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("dataset: failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, stats, fmt.Errorf("dataset: %w %q", ErrMissingColumn, name)
		}
	}
	idCol, hasID := cols[ColID]

	field := func(row []string, name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var incidents []domain.Incident
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("dataset: malformed input: %w", err)
		}
		stats.RowsRead++
		line := stats.RowsRead + 1

		lat, latOK := parseCoordinate(field(row, ColLat))
		lon, lonOK := parseCoordinate(field(row, ColLon))
		if !latOK || !lonOK {
			stats.DroppedCoordinates++
			continue
		}

		age, ok := parseAge(field(row, ColAge))
		if !ok {
			stats.DroppedAge++
			continue
		}

		date, err := ParseOccurrenceDate(field(row, ColDate))
		if err != nil {
			return nil, stats, fmt.Errorf("dataset: line %d: %w", line, err)
		}

		timeOcc, err := strconv.Atoi(field(row, ColTime))
		if err != nil {
			stats.DroppedTime++
			continue
		}

		inc := domain.Incident{
			Date:          date,
			TimeOcc:       timeOcc,
			Area:          field(row, ColArea),
			CrimeType:     field(row, ColCrime),
			Status:        field(row, ColStatus),
			VictimAge:     age,
			VictimSex:     field(row, ColSex),
			VictimDescent: field(row, ColDescent),
			Weapon:        field(row, ColWeapon),
			Latitude:      lat,
			Longitude:     lon,
		}
		if hasID && idCol < len(row) {
			inc.ID = strings.TrimSpace(row[idCol])
		}
		incidents = append(incidents, inc)
	}

	stats.Kept = len(incidents)
	return domain.NewDataset(incidents), stats, nil
}

// ParseOccurrenceDate parses a DATE OCC value and truncates it to the day
func ParseOccurrenceDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s %q", ColDate, s)
}

func parseCoordinate(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// parseAge accepts integer or decimal text and truncates toward zero
func parseAge(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int(v), true
}
