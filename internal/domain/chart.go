package domain

import "time"

// ChartKind names one of the fixed dashboard views
type ChartKind string

const (
	ChartTrend        ChartKind = "trend"
	ChartTopCrimes    ChartKind = "top-crimes"
	ChartByArea       ChartKind = "by-area"
	ChartTimeHeatmap  ChartKind = "time-heatmap"
	ChartOutcomes     ChartKind = "outcomes"
	ChartDemographics ChartKind = "demographics"
	ChartWeapons      ChartKind = "weapons"
)

// ChartInfo describes a chart kind for listings and rendering
type ChartInfo struct {
	Kind    ChartKind `json:"kind"`
	Title   string    `json:"title"`
	Caption string    `json:"caption"`
}

var chartInfos = []ChartInfo{
	{ChartTrend, "Crime Trends Over Time", "Line graph showing crime frequency over time based on selected filters."},
	{ChartTopCrimes, "Top 10 Crime Types", "Bar chart of the top 10 most frequent crimes."},
	{ChartByArea, "Crime Count by Area", "Bar chart showing total number of crimes by area."},
	{ChartTimeHeatmap, "Crimes by Hour and Weekday", "Heatmap showing crime density by hour and weekday."},
	{ChartOutcomes, "Crime Outcomes (Count by Status)", "Bar chart of case outcomes."},
	{ChartDemographics, "Victim Demographics", "Victim sex distribution, age ranges and top 10 descent groups."},
	{ChartWeapons, "Top Weapon Types", "Bar chart of most commonly reported weapons used in crimes."},
}

// Charts returns all chart kinds in display order
func Charts() []ChartInfo {
	return append([]ChartInfo(nil), chartInfos...)
}

// Info returns the descriptor of a chart kind
func (k ChartKind) Info() (ChartInfo, bool) {
	for _, ci := range chartInfos {
		if ci.Kind == k {
			return ci, true
		}
	}
	return ChartInfo{}, false
}

// ParseChartKind validates a chart kind name
func ParseChartKind(s string) (ChartKind, bool) {
	k := ChartKind(s)
	_, ok := k.Info()
	return k, ok
}

// TrendPoint is the incident count of one calendar month
type TrendPoint struct {
	Month string    `json:"month"` // YYYY-MM
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// CategoryCount is the number of incidents sharing a categorical value
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AreaCount is the incident count of an area with its geographic centre
type AreaCount struct {
	Area        string  `json:"area"`
	Count       int     `json:"count"`
	CentroidLat float64 `json:"centroid_lat"`
	CentroidLon float64 `json:"centroid_lon"`
	SpreadKm    float64 `json:"spread_km"` // mean distance from the centroid
}

// Heatmap is an hour x weekday cross-tabulation.
// Counts[h][d] is the count for Hours[h] and Weekdays[d].
type Heatmap struct {
	Hours    []int    `json:"hours"`
	Weekdays []string `json:"weekdays"`
	Counts   [][]int  `json:"counts"`
}

// Max returns the largest cell value
func (h Heatmap) Max() int {
	m := 0
	for _, row := range h.Counts {
		for _, c := range row {
			if c > m {
				m = c
			}
		}
	}
	return m
}

// AgeBin is the incident count of an inclusive victim age range
type AgeBin struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// Demographics groups the three victim breakdowns rendered together
type Demographics struct {
	Sex     []CategoryCount `json:"sex"`
	Age     []AgeBin        `json:"age"`
	Descent []CategoryCount `json:"descent"`
}

// ChartResult is a derived view ready for rendering.
// Data holds []TrendPoint, []CategoryCount, []AreaCount, Heatmap or
// Demographics depending on Kind.
type ChartResult struct {
	Kind           ChartKind   `json:"kind"`
	Title          string      `json:"title"`
	Caption        string      `json:"caption"`
	Total          int         `json:"total"`
	FilterFallback bool        `json:"filter_fallback"`
	FilterError    string      `json:"filter_error,omitempty"`
	Criteria       RawCriteria `json:"criteria"`
	Data           interface{} `json:"data"`
}

// ChartResponse wraps a chart result with metadata
type ChartResponse struct {
	Data    ChartResult `json:"data"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// Frame is the content of the display surface after a submission completes
type Frame struct {
	Generation uint64       `json:"generation"`
	Kind       ChartKind    `json:"kind"`
	Result     *ChartResult `json:"result,omitempty"`
	Image      []byte       `json:"-"`
	Error      string       `json:"error,omitempty"`
	RenderedAt time.Time    `json:"rendered_at"`
}
