package service

import (
	"testing"

	"github.com/smartcity/crimedash/internal/domain"
	"github.com/smartcity/crimedash/internal/repository/postgres"
)

func TestDisplayPublishRejectsStale(t *testing.T) {
	var d display
	first, _, cancelFirst := d.begin()
	second, _, cancelSecond := d.begin()
	defer cancelFirst()
	defer cancelSecond()

	if d.publish(domain.Frame{Generation: first}) {
		t.Error("stale generation replaced the frame")
	}
	if !d.publish(domain.Frame{Generation: second}) {
		t.Error("latest generation was rejected")
	}
	frame, ok := d.current()
	if !ok || frame.Generation != second {
		t.Errorf("current = %+v, %v", frame, ok)
	}
}

func TestDisplayBeginCancelsPrevious(t *testing.T) {
	var d display
	_, ctx, cancelFirst := d.begin()
	_, _, cancel := d.begin()
	defer cancelFirst()
	defer cancel()

	select {
	case <-ctx.Done():
	default:
		t.Error("previous submission was not cancelled")
	}
}

func TestSubmitLatestWins(t *testing.T) {
	svc := newTestService(postgres.NewMockRepository())
	if _, ok := svc.Current(); ok {
		t.Fatal("display should start empty")
	}

	raw := svc.DefaultCriteria()
	var last uint64
	for _, kind := range []domain.ChartKind{domain.ChartTrend, domain.ChartWeapons, domain.ChartDemographics, domain.ChartOutcomes} {
		last = svc.Submit(kind, raw)
	}
	svc.WaitDisplay()
	svc.WaitBackground()

	frame, ok := svc.Current()
	if !ok {
		t.Fatal("nothing displayed")
	}
	if frame.Generation != last || frame.Kind != domain.ChartOutcomes {
		t.Errorf("frame = generation %d kind %s, want generation %d kind %s", frame.Generation, frame.Kind, last, domain.ChartOutcomes)
	}
	if frame.Error != "" || frame.Result == nil || len(frame.Image) == 0 {
		t.Errorf("incomplete frame: %+v", frame)
	}
}

func TestSubmitPublishesErrors(t *testing.T) {
	svc := newTestService(postgres.NewMockRepository())
	gen := svc.Submit(domain.ChartKind("pie"), svc.DefaultCriteria())
	svc.WaitDisplay()

	frame, ok := svc.Current()
	if !ok || frame.Generation != gen {
		t.Fatalf("frame = %+v, %v", frame, ok)
	}
	if frame.Error == "" || frame.Result != nil {
		t.Errorf("expected an error frame, got %+v", frame)
	}
}
