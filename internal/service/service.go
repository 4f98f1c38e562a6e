package service

import (
	"context"
	"time"

	"switchbot_dashboard/internal/models"
	"switchbot_dashboard/internal/repository"
	"switchbot_dashboard/internal/switchbot"
)

type Authorization interface {
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (string, error)
}

// Settings owns the in-memory credential copy and its persisted blob.
type Settings interface {
	Init(ctx context.Context) (SettingsSource, error)
	Get() models.Settings
	Save(ctx context.Context, s models.Settings) error
	Credentials() (models.Credentials, error)
}

// Devices lists the account's devices using the current credentials.
type Devices interface {
	Fetch(ctx context.Context) (models.DeviceListResult, error)
}

// Control issues device commands. An empty device id falls back to the
// one stored in settings for that category.
type Control interface {
	ApplyAirConditioner(ctx context.Context, deviceID string, st models.AcState) (models.CommandResult, error)
	SendTV(ctx context.Context, deviceID, command string) (models.CommandResult, error)
	SendLight(ctx context.Context, deviceID, command string) (models.CommandResult, error)
	SendCommand(ctx context.Context, deviceID string, cmd switchbot.CommandRequest) (models.CommandResult, error)
}

// Meter reads temperature and humidity. Status is operator initiated;
// Sample serves periodic readers and keeps routine reads out of the
// activity log.
type Meter interface {
	Status(ctx context.Context, deviceID string) (models.MeterStatusResult, error)
	Sample(ctx context.Context, deviceID string) (models.MeterStatusResult, error)
}

// ActivityLog exposes the recent status messages with filtering access.
type ActivityLog interface {
	Record(typ, message, command string)
	List(ctx context.Context, f LogFilter) ([]models.ActivityEntry, error)
}

// MeterPoller reads the configured meter periodically.
// Stop via context cancellation in main() for graceful shutdown.
type MeterPoller interface {
	Run(ctx context.Context, tick time.Duration)
}

// VendorAPI is the subset of the SwitchBot client used by the services.
type VendorAPI interface {
	FetchDevices(ctx context.Context, token, secret string, useProxy bool) models.DeviceListResult
	SendCommand(ctx context.Context, creds models.Credentials, deviceID string, cmd switchbot.CommandRequest) models.CommandResult
	GetMeterStatus(ctx context.Context, creds models.Credentials, deviceID string) models.MeterStatusResult
	SendAirConditionerCommand(ctx context.Context, creds models.Credentials, deviceID string, state models.AcState) models.CommandResult
}

// MeterSink receives every successful meter reading.
type MeterSink interface {
	RecordMeterReading(deviceID string, r models.MeterReading)
}

// Deps carries everything NewService needs besides the repositories.
type Deps struct {
	API           VendorAPI
	Auth          AuthConfig
	Defaults      models.Settings
	ActivityLimit int
	MeterSinks    []MeterSink
}

type Service struct {
	Authorization
	Settings
	Devices
	Control
	Meter
	ActivityLog
	MeterPoller
}

// NewService wires the repository layer and the vendor client into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	activity := NewActivityLogService(deps.ActivityLimit)
	settings := NewSettingsService(repos.SettingsRepo, deps.Defaults, activity)
	meter := NewMeterService(settings, deps.API, activity, deps.MeterSinks...)

	return &Service{
		Authorization: NewAuthService(deps.Auth),
		Settings:      settings,
		Devices:       NewDeviceService(settings, deps.API, activity),
		Control:       NewControlService(settings, deps.API, activity),
		Meter:         meter,
		ActivityLog:   activity,
		MeterPoller:   NewMeterPollerService(settings, meter),
	}
}
