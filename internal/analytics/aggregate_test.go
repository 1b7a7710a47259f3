package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/smartcity/crimedash/internal/domain"
)

func TestMonthlyTrendScenario(t *testing.T) {
	ds := domain.NewDataset([]domain.Incident{
		{Date: day("2021-02-10"), Area: "Central"},
		{Date: day("2021-01-05"), Area: "Central"},
		{Date: day("2021-02-15"), Area: "Central"},
	})

	points := MonthlyTrend(Apply(ds, everything()))
	if len(points) != 2 {
		t.Fatalf("got %d buckets, want 2: %+v", len(points), points)
	}
	if points[0].Month != "2021-01" || points[0].Count != 1 {
		t.Errorf("first bucket = %+v, want 2021-01 -> 1", points[0])
	}
	if points[1].Month != "2021-02" || points[1].Count != 2 {
		t.Errorf("second bucket = %+v, want 2021-02 -> 2", points[1])
	}
}

func TestMonthlyTrendSumsToTotal(t *testing.T) {
	ds := sampleDataset()
	for _, c := range []domain.Criteria{everything(), {Start: day("2021-01-01"), End: day("2021-12-31"), MaxAge: 100}} {
		v := Apply(ds, c)
		sum := 0
		points := MonthlyTrend(v)
		for i, p := range points {
			sum += p.Count
			if i > 0 && !points[i-1].Start.Before(p.Start) {
				t.Errorf("buckets out of order at %d", i)
			}
		}
		if sum != v.Len() {
			t.Errorf("trend sums to %d, view has %d records", sum, v.Len())
		}
	}
}

func TestTopNBoundedAndDescending(t *testing.T) {
	var incidents []domain.Incident
	for i := 0; i < 15; i++ {
		for j := 0; j <= i; j++ {
			incidents = append(incidents, domain.Incident{
				Date:      day("2021-01-01"),
				CrimeType: string(rune('A' + i)),
			})
		}
	}
	v := FullView(domain.NewDataset(incidents))

	top := TopN(v, FieldCrimeType, TopLimit)
	if len(top) != TopLimit {
		t.Fatalf("len = %d, want %d", len(top), TopLimit)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Count > top[i-1].Count {
			t.Errorf("not descending at %d: %+v", i, top)
		}
	}
	if top[0].Label != "O" || top[0].Count != 15 {
		t.Errorf("top = %+v, want O with 15", top[0])
	}

	if got := TopN(v, FieldCrimeType, 3); len(got) != 3 {
		t.Errorf("TopN(3) returned %d rows", len(got))
	}
}

func TestValueCountsTiesKeepFirstAppearance(t *testing.T) {
	ds := domain.NewDataset([]domain.Incident{
		{Weapon: "KNIFE"},
		{Weapon: "HANDGUN"},
		{Weapon: ""},
		{Weapon: "ROCK"},
		{Weapon: "HANDGUN"},
		{Weapon: "KNIFE"},
		{Weapon: "ROCK"},
	})

	counts := ValueCounts(FullView(ds), FieldWeapon)
	want := []string{"KNIFE", "HANDGUN", "ROCK"}
	if len(counts) != len(want) {
		t.Fatalf("counts = %+v", counts)
	}
	for i, label := range want {
		if counts[i].Label != label || counts[i].Count != 2 {
			t.Errorf("counts[%d] = %+v, want %s with 2", i, counts[i], label)
		}
	}
}

func TestAreaBreakdown(t *testing.T) {
	rows := AreaBreakdown(FullView(sampleDataset()))
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Area != "Central" || rows[0].Count != 3 {
		t.Errorf("first row = %+v, want Central with 3", rows[0])
	}
	if rows[1].Area != "Hollywood" || rows[1].Count != 2 {
		t.Errorf("second row = %+v, want Hollywood with 2", rows[1])
	}

	central := rows[0]
	if central.CentroidLat < 34.04 || central.CentroidLat > 34.05 {
		t.Errorf("CentroidLat = %v", central.CentroidLat)
	}
	if central.CentroidLon < -118.26 || central.CentroidLon > -118.24 {
		t.Errorf("CentroidLon = %v", central.CentroidLon)
	}
	if central.SpreadKm <= 0 || central.SpreadKm > 2 {
		t.Errorf("SpreadKm = %v", central.SpreadKm)
	}
}

func TestTimeHeatmap(t *testing.T) {
	// 2021-01-04 is a Monday, 2021-01-10 a Sunday
	ds := domain.NewDataset([]domain.Incident{
		{Date: day("2021-01-04"), TimeOcc: 15},
		{Date: day("2021-01-04"), TimeOcc: 59},
		{Date: day("2021-01-10"), TimeOcc: 2359},
		{Date: day("2021-01-06"), TimeOcc: 1230},
		{Date: day("2021-01-06"), TimeOcc: 2500},
	})

	hm := TimeHeatmap(FullView(ds))
	if len(hm.Counts) != 24 || len(hm.Hours) != 24 {
		t.Fatalf("heatmap has %d rows", len(hm.Counts))
	}
	for h, row := range hm.Counts {
		if len(row) != 7 {
			t.Fatalf("row %d has %d columns", h, len(row))
		}
	}
	if hm.Weekdays[0] != time.Monday.String() || hm.Weekdays[6] != time.Sunday.String() {
		t.Errorf("Weekdays = %v", hm.Weekdays)
	}

	if hm.Counts[0][0] != 2 {
		t.Errorf("Monday 00h = %d, want 2", hm.Counts[0][0])
	}
	if hm.Counts[23][6] != 1 {
		t.Errorf("Sunday 23h = %d, want 1", hm.Counts[23][6])
	}
	if hm.Counts[12][2] != 1 {
		t.Errorf("Wednesday 12h = %d, want 1", hm.Counts[12][2])
	}
	if hm.Max() != 2 {
		t.Errorf("Max = %d, want 2", hm.Max())
	}

	total := 0
	for _, row := range hm.Counts {
		for _, n := range row {
			total += n
		}
	}
	if total != 4 {
		t.Errorf("total = %d, want 4 (hour 25 skipped)", total)
	}
}

func TestAgeDistributionEdges(t *testing.T) {
	ds := domain.NewDataset([]domain.Incident{
		{VictimAge: 0},
		{VictimAge: 18},
		{VictimAge: 19},
		{VictimAge: 30},
		{VictimAge: 31},
		{VictimAge: 60},
		{VictimAge: 61},
		{VictimAge: 100},
		{VictimAge: -1},
		{VictimAge: 120},
	})

	bins := AgeDistribution(FullView(ds))
	want := map[string]int{"0-18": 1, "19-30": 2, "31-45": 1, "46-60": 1, "61-100": 2}
	if len(bins) != len(want) {
		t.Fatalf("bins = %+v", bins)
	}
	for _, b := range bins {
		if b.Count != want[b.Label] {
			t.Errorf("bin %s = %d, want %d", b.Label, b.Count, want[b.Label])
		}
	}

	if AgeBins[0].Count != 0 {
		t.Error("AgeDistribution mutated the shared bins")
	}
}

func TestAgeDistributionSkipsUnknownAge(t *testing.T) {
	ds := domain.NewDataset([]domain.Incident{
		{VictimAge: 0},
		{VictimAge: 0},
		{VictimAge: 0},
		{VictimAge: 10},
	})

	bins := AgeDistribution(FullView(ds))
	if bins[0].Label != "0-18" || bins[0].Count != 1 {
		t.Errorf("first bin = %+v, want 0-18 with 1", bins[0])
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != 1 {
		t.Errorf("binned %d victims, want 1", total)
	}
}

func TestDemographicBreakdown(t *testing.T) {
	demo := DemographicBreakdown(FullView(sampleDataset()))
	if len(demo.Sex) != 3 || demo.Sex[0].Label != "M" || demo.Sex[0].Count != 2 {
		t.Errorf("Sex = %+v", demo.Sex)
	}
	if len(demo.Age) != len(AgeBins) {
		t.Errorf("Age = %+v", demo.Age)
	}
	// one record has no descent code
	total := 0
	for _, d := range demo.Descent {
		total += d.Count
	}
	if total != 4 {
		t.Errorf("descent total = %d, want 4", total)
	}
}

func TestComputeAllKinds(t *testing.T) {
	v := FullView(sampleDataset())
	for _, info := range domain.Charts() {
		result, err := Compute(info.Kind, v)
		if err != nil {
			t.Errorf("Compute(%s) failed: %v", info.Kind, err)
			continue
		}
		if result.Total != v.Len() || result.Title != info.Title || result.Data == nil {
			t.Errorf("Compute(%s) = %+v", info.Kind, result)
		}
	}

	weapons, _ := Compute(domain.ChartWeapons, v)
	rows, ok := weapons.Data.([]domain.CategoryCount)
	if !ok || len(rows) != 2 || rows[0].Label != "STRONG-ARM" {
		t.Errorf("weapons data = %+v", weapons.Data)
	}
}

func TestComputeUnknownKind(t *testing.T) {
	_, err := Compute(domain.ChartKind("pie"), FullView(sampleDataset()))
	if !errors.Is(err, ErrUnknownChart) {
		t.Errorf("err = %v, want ErrUnknownChart", err)
	}
}

func TestAggregationsOnEmptyView(t *testing.T) {
	c := everything()
	c.MinAge, c.MaxAge = 10, 5
	v := Apply(sampleDataset(), c)

	if got := MonthlyTrend(v); len(got) != 0 {
		t.Errorf("trend = %+v", got)
	}
	if got := TopN(v, FieldCrimeType, TopLimit); len(got) != 0 {
		t.Errorf("top = %+v", got)
	}
	if got := TimeHeatmap(v); got.Max() != 0 || len(got.Counts) != 24 {
		t.Errorf("heatmap = %+v", got)
	}
}
