package analytics

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/smartcity/crimedash/internal/domain"
)

// ErrInvalidDate is returned when a date control holds unparseable text
var ErrInvalidDate = errors.New("invalid date")

// Layouts accepted from date controls. "1/2/06" is the short form
// produced by calendar pickers in the en_US locale.
var inputDateLayouts = []string{
	domain.DateLayout,
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	time.RFC3339,
}

// View is a filtered subset of a Dataset.
// It holds indices into the dataset, never copies of records.
type View struct {
	ds      *domain.Dataset
	indices []int
	all     bool
}

// FullView returns a view over every record of ds
func FullView(ds *domain.Dataset) View {
	return View{ds: ds, all: true}
}

// Len returns the number of records in the view
func (v View) Len() int {
	if v.ds == nil {
		return 0
	}
	if v.all {
		return v.ds.Len()
	}
	return len(v.indices)
}

// At returns the i-th record of the view
func (v View) At(i int) domain.Incident {
	if v.all {
		return v.ds.At(i)
	}
	return v.ds.At(v.indices[i])
}

// Apply returns the records of ds satisfying every constraint of c.
// Constraints are checked in a single pass per record, so the order in
// which they are listed does not affect the result.
func Apply(ds *domain.Dataset, c domain.Criteria) View {
	return applyTo(FullView(ds), c)
}

// Refine applies c on top of an existing view
func Refine(v View, c domain.Criteria) View {
	return applyTo(v, c)
}

func applyTo(v View, c domain.Criteria) View {
	indices := make([]int, 0)
	if c.End.Before(c.Start) || c.MinAge > c.MaxAge {
		return View{ds: v.ds, indices: indices}
	}

	area := constraint(c.Area)
	crime := constraint(c.CrimeType)
	outcome := constraint(c.Outcome)

	n := v.Len()
	for i := 0; i < n; i++ {
		inc := v.At(i)
		if inc.Date.Before(c.Start) || inc.Date.After(c.End) {
			continue
		}
		if area != "" && inc.Area != area {
			continue
		}
		if crime != "" && inc.CrimeType != crime {
			continue
		}
		if outcome != "" && inc.Status != outcome {
			continue
		}
		if inc.VictimAge < c.MinAge || inc.VictimAge > c.MaxAge {
			continue
		}
		indices = append(indices, v.index(i))
	}

	return View{ds: v.ds, indices: indices}
}

// index maps a view position to the dataset position
func (v View) index(i int) int {
	if v.all {
		return i
	}
	return v.indices[i]
}

func constraint(v string) string {
	if domain.IsAll(v) {
		return ""
	}
	return v
}

// Resolve converts raw control values into Criteria
func Resolve(raw domain.RawCriteria) (domain.Criteria, error) {
	start, err := ParseInputDate(raw.Start)
	if err != nil {
		return domain.Criteria{}, fmt.Errorf("start: %w", err)
	}
	end, err := ParseInputDate(raw.End)
	if err != nil {
		return domain.Criteria{}, fmt.Errorf("end: %w", err)
	}

	return domain.Criteria{
		Start:     start,
		End:       end,
		Area:      strings.TrimSpace(raw.Area),
		CrimeType: strings.TrimSpace(raw.CrimeType),
		Outcome:   strings.TrimSpace(raw.Outcome),
		MinAge:    raw.MinAge,
		MaxAge:    raw.MaxAge,
	}, nil
}

// ParseInputDate parses a date control value to UTC midnight
func ParseInputDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
}

// Filtered is the outcome of filtering with raw control values
type Filtered struct {
	View     View
	Fallback bool
	Err      error
}

// ApplyRaw resolves raw and filters ds. When the date controls cannot be
// parsed the error is logged and the unfiltered dataset is returned with
// Fallback set; none of the other constraints are applied in that case.
func ApplyRaw(ds *domain.Dataset, raw domain.RawCriteria) Filtered {
	c, err := Resolve(raw)
	if err != nil {
		log.Printf("Filter error: %v", err)
		return Filtered{View: FullView(ds), Fallback: true, Err: err}
	}
	return Filtered{View: Apply(ds, c)}
}
