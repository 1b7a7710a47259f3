package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/smartcity/crimedash/internal/domain"
)

// display is the single chart panel. Each submission gets the next
// generation; only the latest generation may replace the shown frame.
type display struct {
	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
	frame  *domain.Frame
	wg     sync.WaitGroup
}

// begin cancels in-flight work and hands out the next generation
func (d *display) begin() (uint64, context.Context, context.CancelFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}
	d.latest++
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	return d.latest, ctx, cancel
}

// publish replaces the shown frame unless a newer generation was requested
func (d *display) publish(frame domain.Frame) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame.Generation != d.latest {
		return false
	}
	d.frame = &frame
	return true
}

func (d *display) current() (domain.Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frame == nil {
		return domain.Frame{}, false
	}
	return *d.frame, true
}

// Submit starts rendering a chart for the display surface and returns its
// generation. Any in-flight submission is cancelled.
func (s *DashboardService) Submit(kind domain.ChartKind, raw domain.RawCriteria) uint64 {
	gen, ctx, cancel := s.display.begin()

	s.display.wg.Add(1)
	go func() {
		defer s.display.wg.Done()
		defer cancel()

		result, img, err := s.compute(ctx, kind, raw, true)
		if errors.Is(err, context.Canceled) {
			log.Printf("Display generation %d superseded before completion", gen)
			return
		}

		frame := domain.Frame{Generation: gen, Kind: kind, RenderedAt: s.now()}
		if err != nil {
			log.Printf("Display generation %d failed: %v", gen, err)
			frame.Error = err.Error()
		} else {
			frame.Result = &result
			frame.Image = img
		}

		if !s.display.publish(frame) {
			log.Printf("Discarding stale display generation %d", gen)
		}
	}()

	return gen
}

// Current returns the frame shown on the display surface
func (s *DashboardService) Current() (domain.Frame, bool) {
	return s.display.current()
}

// WaitDisplay blocks until all display submissions have finished
func (s *DashboardService) WaitDisplay() {
	s.display.wg.Wait()
}
