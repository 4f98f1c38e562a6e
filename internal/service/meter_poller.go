package service

import (
	"context"
	"errors"
	"time"
)

// MeterPollerService reads the configured meter on every tick.
type MeterPollerService struct {
	settings Settings
	meter    Meter
}

func NewMeterPollerService(settings Settings, meter Meter) *MeterPollerService {
	return &MeterPollerService{settings: settings, meter: meter}
}

// Run ticks at the given interval until ctx is canceled. A non-positive
// interval disables polling.
func (s *MeterPollerService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		return
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = s.pollOnce(ctx)
		}
	}
}

// pollOnce reads the meter once. It reports whether a vendor call was made.
func (s *MeterPollerService) pollOnce(ctx context.Context) bool {
	// No meter selected yet: nothing to read until settings name one.
	if s.settings.Get().MeterDeviceID == "" {
		return false
	}
	_, err := s.meter.Sample(ctx, "")
	return !errors.Is(err, ErrNotConfigured)
}
