package service

import (
	"context"

	"switchbot_dashboard/internal/models"
)

type DeviceService struct {
	settings Settings
	api      VendorAPI
	activity ActivityLog
}

func NewDeviceService(settings Settings, api VendorAPI, activity ActivityLog) *DeviceService {
	return &DeviceService{settings: settings, api: api, activity: activity}
}

// Fetch lists and categorizes the account's devices. ErrNotConfigured is
// returned before any vendor call when credentials are missing.
func (s *DeviceService) Fetch(ctx context.Context) (models.DeviceListResult, error) {
	creds, err := s.settings.Credentials()
	if err != nil {
		return models.DeviceListResult{}, err
	}

	res := s.api.FetchDevices(ctx, creds.Token, creds.Secret, creds.UseProxy)
	if !res.Success {
		record(s.activity, models.ActivityError, "Failed to fetch devices: "+res.Message, "")
	}
	return res, nil
}

// record appends to the activity log when one is wired.
func record(log ActivityLog, typ, message, command string) {
	if log != nil {
		log.Record(typ, message, command)
	}
}
