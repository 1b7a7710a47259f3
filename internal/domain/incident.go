package domain

import (
	"sort"
	"strings"
	"time"
)

// AllSentinel is the selector value that disables a categorical filter
const AllSentinel = "All"

// DateLayout is the canonical date format used in API payloads
const DateLayout = "2006-01-02"

// Age control bounds, matching the range of the age selectors
const (
	MinVictimAge = 0
	MaxVictimAge = 100
)

// Incident represents one row of the crime dataset
type Incident struct {
	ID            string    `json:"id,omitempty"`
	Date          time.Time `json:"date"`
	TimeOcc       int       `json:"time_occ"` // HHMM
	Area          string    `json:"area"`
	CrimeType     string    `json:"crime_type"`
	Status        string    `json:"status"`
	VictimAge     int       `json:"victim_age"`
	VictimSex     string    `json:"victim_sex"`
	VictimDescent string    `json:"victim_descent"`
	Weapon        string    `json:"weapon"`
	Latitude      float64   `json:"lat"`
	Longitude     float64   `json:"lon"`
}

// Hour returns the hour of day encoded in TimeOcc
func (i Incident) Hour() int {
	return i.TimeOcc / 100
}

// LoadStats reports what the loader kept and dropped
type LoadStats struct {
	RowsRead           int `json:"rows_read"`
	Kept               int `json:"kept"`
	DroppedCoordinates int `json:"dropped_coordinates"`
	DroppedAge         int `json:"dropped_age"`
	DroppedTime        int `json:"dropped_time"`
}

// Dataset is the cleaned incident table. It is never mutated after
// construction and may be read from any number of goroutines.
type Dataset struct {
	incidents  []Incident
	areas      []string
	crimeTypes []string
	outcomes   []string
	minDate    time.Time
	maxDate    time.Time
}

// NewDataset takes ownership of incidents and indexes selector values
func NewDataset(incidents []Incident) *Dataset {
	ds := &Dataset{incidents: incidents}

	areas := make(map[string]struct{})
	crimes := make(map[string]struct{})
	outcomes := make(map[string]struct{})
	for i, inc := range incidents {
		addDistinct(areas, inc.Area)
		addDistinct(crimes, inc.CrimeType)
		addDistinct(outcomes, inc.Status)

		if i == 0 || inc.Date.Before(ds.minDate) {
			ds.minDate = inc.Date
		}
		if i == 0 || inc.Date.After(ds.maxDate) {
			ds.maxDate = inc.Date
		}
	}
	ds.areas = sortedKeys(areas)
	ds.crimeTypes = sortedKeys(crimes)
	ds.outcomes = sortedKeys(outcomes)

	return ds
}

// Len returns the number of incidents
func (d *Dataset) Len() int {
	return len(d.incidents)
}

// At returns the incident at index i
func (d *Dataset) At(i int) Incident {
	return d.incidents[i]
}

// Areas returns the sorted distinct area names
func (d *Dataset) Areas() []string {
	return append([]string(nil), d.areas...)
}

// CrimeTypes returns the sorted distinct crime descriptions
func (d *Dataset) CrimeTypes() []string {
	return append([]string(nil), d.crimeTypes...)
}

// Outcomes returns the sorted distinct case status descriptions
func (d *Dataset) Outcomes() []string {
	return append([]string(nil), d.outcomes...)
}

// DateSpan returns the earliest and latest occurrence dates.
// Both are zero for an empty dataset.
func (d *Dataset) DateSpan() (time.Time, time.Time) {
	return d.minDate, d.maxDate
}

func addDistinct(set map[string]struct{}, v string) {
	if v == "" {
		return
	}
	set[v] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Criteria is the resolved conjunction of filter constraints.
// Empty or AllSentinel categorical values mean no constraint.
type Criteria struct {
	Start     time.Time
	End       time.Time
	Area      string
	CrimeType string
	Outcome   string
	MinAge    int
	MaxAge    int
}

// RawCriteria holds filter control values as entered by the user
type RawCriteria struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Area      string `json:"area"`
	CrimeType string `json:"crime"`
	Outcome   string `json:"outcome"`
	MinAge    int    `json:"min_age"`
	MaxAge    int    `json:"max_age"`
}

// DefaultRawCriteria mirrors the initial state of the filter controls
func DefaultRawCriteria(now time.Time) RawCriteria {
	return RawCriteria{
		Start:     "2020-01-01",
		End:       now.Format(DateLayout),
		Area:      AllSentinel,
		CrimeType: AllSentinel,
		Outcome:   AllSentinel,
		MinAge:    MinVictimAge,
		MaxAge:    MaxVictimAge,
	}
}

// IsAll reports whether a selector value disables its filter
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == AllSentinel
}

// FilterOptions lists the values offered by the filter selectors
type FilterOptions struct {
	Areas      []string `json:"areas"`
	CrimeTypes []string `json:"crime_types"`
	Outcomes   []string `json:"outcomes"`
	MinAge     int      `json:"min_age"`
	MaxAge     int      `json:"max_age"`
	FirstDate  string   `json:"first_date,omitempty"`
	LastDate   string   `json:"last_date,omitempty"`
	Records    int      `json:"records"`
}
