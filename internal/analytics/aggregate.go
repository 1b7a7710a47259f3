package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/golang/geo/s2"

	"github.com/smartcity/crimedash/internal/domain"
	"github.com/smartcity/crimedash/pkg/utils"
)

// TopLimit is the number of categories kept by the truncated breakdowns
const TopLimit = 10

// ErrUnknownChart is returned for a chart kind with no aggregation
var ErrUnknownChart = errors.New("unknown chart kind")

// Field selects a categorical column of an incident
type Field func(domain.Incident) string

// Categorical fields
var (
	FieldArea      Field = func(i domain.Incident) string { return i.Area }
	FieldCrimeType Field = func(i domain.Incident) string { return i.CrimeType }
	FieldOutcome   Field = func(i domain.Incident) string { return i.Status }
	FieldSex       Field = func(i domain.Incident) string { return i.VictimSex }
	FieldDescent   Field = func(i domain.Incident) string { return i.VictimDescent }
	FieldWeapon    Field = func(i domain.Incident) string { return i.Weapon }
)

// Weekdays in heatmap column order
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// AgeBins are the fixed victim age ranges, inclusive on both ends.
// Age 0 marks an unknown or non-person victim and belongs to no bin.
var AgeBins = []domain.AgeBin{
	{Label: "0-18", Min: 1, Max: 18},
	{Label: "19-30", Min: 19, Max: 30},
	{Label: "31-45", Min: 31, Max: 45},
	{Label: "46-60", Min: 46, Max: 60},
	{Label: "61-100", Min: 61, Max: 100},
}

// MonthlyTrend counts incidents per calendar month in chronological order
func MonthlyTrend(v View) []domain.TrendPoint {
	counts := make(map[time.Time]int)
	for i := 0; i < v.Len(); i++ {
		d := v.At(i).Date
		month := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		counts[month]++
	}

	points := make([]domain.TrendPoint, 0, len(counts))
	for month, n := range counts {
		points = append(points, domain.TrendPoint{
			Month: month.Format("2006-01"),
			Start: month,
			Count: n,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Start.Before(points[j].Start) })
	return points
}

// ValueCounts counts the non-empty values of field, ordered by descending
// count. Equal counts keep the order in which values first appeared.
func ValueCounts(v View, field Field) []domain.CategoryCount {
	index := make(map[string]int)
	var counts []domain.CategoryCount
	for i := 0; i < v.Len(); i++ {
		key := field(v.At(i))
		if key == "" {
			continue
		}
		pos, ok := index[key]
		if !ok {
			pos = len(counts)
			index[key] = pos
			counts = append(counts, domain.CategoryCount{Label: key})
		}
		counts[pos].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

// TopN returns the n most frequent values of field
func TopN(v View, field Field, n int) []domain.CategoryCount {
	counts := ValueCounts(v, field)
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// AreaBreakdown counts incidents per area with the centroid of each area
func AreaBreakdown(v View) []domain.AreaCount {
	counts := ValueCounts(v, FieldArea)

	sums := make(map[string]s2.Point, len(counts))
	for i := 0; i < v.Len(); i++ {
		inc := v.At(i)
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(inc.Latitude, inc.Longitude))
		acc := sums[inc.Area]
		acc.Vector = acc.Vector.Add(p.Vector)
		sums[inc.Area] = acc
	}

	centroids := make(map[string]s2.LatLng, len(counts))
	for area, sum := range sums {
		if sum.Norm() == 0 {
			continue
		}
		centroids[area] = s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	}

	spread := make(map[string]float64, len(counts))
	for i := 0; i < v.Len(); i++ {
		inc := v.At(i)
		c, ok := centroids[inc.Area]
		if !ok {
			continue
		}
		spread[inc.Area] += utils.Haversine(c.Lat.Degrees(), c.Lng.Degrees(), inc.Latitude, inc.Longitude)
	}

	rows := make([]domain.AreaCount, 0, len(counts))
	for _, cc := range counts {
		row := domain.AreaCount{Area: cc.Label, Count: cc.Count}
		if c, ok := centroids[cc.Label]; ok {
			row.CentroidLat = utils.RoundTo(c.Lat.Degrees(), 5)
			row.CentroidLon = utils.RoundTo(c.Lng.Degrees(), 5)
			row.SpreadKm = utils.RoundTo(spread[cc.Label]/float64(cc.Count), 3)
		}
		rows = append(rows, row)
	}
	return rows
}

// TimeHeatmap cross-tabulates incidents by hour of day and weekday.
// Records whose hour falls outside 0..23 are not counted.
func TimeHeatmap(v View) domain.Heatmap {
	hm := domain.Heatmap{
		Hours:    make([]int, 24),
		Weekdays: make([]string, len(Weekdays)),
		Counts:   make([][]int, 24),
	}
	for h := range hm.Hours {
		hm.Hours[h] = h
		hm.Counts[h] = make([]int, len(Weekdays))
	}
	for d, wd := range Weekdays {
		hm.Weekdays[d] = wd.String()
	}

	for i := 0; i < v.Len(); i++ {
		inc := v.At(i)
		h := inc.Hour()
		if h < 0 || h > 23 {
			continue
		}
		hm.Counts[h][weekdayColumn(inc.Date.Weekday())]++
	}
	return hm
}

// weekdayColumn maps Sunday=0..Saturday=6 onto Monday-first columns
func weekdayColumn(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// AgeDistribution counts victims per fixed age bin.
// Ages outside every bin are not counted.
func AgeDistribution(v View) []domain.AgeBin {
	bins := append([]domain.AgeBin(nil), AgeBins...)
	for i := 0; i < v.Len(); i++ {
		age := v.At(i).VictimAge
		for b := range bins {
			if age >= bins[b].Min && age <= bins[b].Max {
				bins[b].Count++
				break
			}
		}
	}
	return bins
}

// DemographicBreakdown computes the sex, age and descent aggregates
func DemographicBreakdown(v View) domain.Demographics {
	return domain.Demographics{
		Sex:     ValueCounts(v, FieldSex),
		Age:     AgeDistribution(v),
		Descent: TopN(v, FieldDescent, TopLimit),
	}
}

// Compute runs the aggregation of a chart kind over v
func Compute(kind domain.ChartKind, v View) (domain.ChartResult, error) {
	info, ok := kind.Info()
	if !ok {
		return domain.ChartResult{}, fmt.Errorf("analytics: %w %q", ErrUnknownChart, kind)
	}

	result := domain.ChartResult{
		Kind:    kind,
		Title:   info.Title,
		Caption: info.Caption,
		Total:   v.Len(),
	}

	switch kind {
	case domain.ChartTrend:
		result.Data = MonthlyTrend(v)
	case domain.ChartTopCrimes:
		result.Data = TopN(v, FieldCrimeType, TopLimit)
	case domain.ChartByArea:
		result.Data = AreaBreakdown(v)
	case domain.ChartTimeHeatmap:
		result.Data = TimeHeatmap(v)
	case domain.ChartOutcomes:
		result.Data = ValueCounts(v, FieldOutcome)
	case domain.ChartDemographics:
		result.Data = DemographicBreakdown(v)
	case domain.ChartWeapons:
		result.Data = TopN(v, FieldWeapon, TopLimit)
	default:
		return domain.ChartResult{}, fmt.Errorf("analytics: %w %q", ErrUnknownChart, kind)
	}

	return result, nil
}
