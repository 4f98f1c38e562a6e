package service

import (
	"context"
	"fmt"
	"sync"

	"switchbot_dashboard/internal/models"
)

type MeterService struct {
	settings Settings
	api      VendorAPI
	activity ActivityLog
	sinks    []MeterSink

	mu sync.Mutex
	// lastSampleErr is the message of the last failed background read; cleared on success.
	lastSampleErr string
}

func NewMeterService(settings Settings, api VendorAPI, activity ActivityLog, sinks ...MeterSink) *MeterService {
	return &MeterService{settings: settings, api: api, activity: activity, sinks: sinks}
}

// Status reads a meter on the operator's request. Both outcomes land in the
// activity log and successful readings are fanned out to the sinks.
func (s *MeterService) Status(ctx context.Context, deviceID string) (models.MeterStatusResult, error) {
	res, err := s.read(ctx, deviceID)
	if err != nil {
		return res, err
	}
	if !res.Success || res.Data == nil {
		record(s.activity, models.ActivityError, res.Message, "")
		return res, nil
	}
	record(s.activity, models.ActivitySuccess, "Meter status updated.", "")
	return res, nil
}

// Sample is the background variant of Status used by the poller and the
// meter stream. Successful readings only reach the sinks; a failure is
// recorded once until a read succeeds again.
func (s *MeterService) Sample(ctx context.Context, deviceID string) (models.MeterStatusResult, error) {
	res, err := s.read(ctx, deviceID)
	if err != nil {
		return res, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Success && res.Data != nil {
		s.lastSampleErr = ""
		return res, nil
	}
	if res.Message != s.lastSampleErr {
		s.lastSampleErr = res.Message
		record(s.activity, models.ActivityError, res.Message, "")
	}
	return res, nil
}

func (s *MeterService) read(ctx context.Context, deviceID string) (models.MeterStatusResult, error) {
	creds, err := s.settings.Credentials()
	if err != nil {
		return models.MeterStatusResult{}, err
	}
	deviceID = fallback(deviceID, s.settings.Get().MeterDeviceID)
	if deviceID == "" {
		return models.MeterStatusResult{}, fmt.Errorf("%w: no meter selected", ErrDeviceNotConfigured)
	}

	res := s.api.GetMeterStatus(ctx, creds, deviceID)
	if res.Success && res.Data != nil {
		for _, sink := range s.sinks {
			if sink != nil {
				sink.RecordMeterReading(deviceID, *res.Data)
			}
		}
	}
	return res, nil
}
