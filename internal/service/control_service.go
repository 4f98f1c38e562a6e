package service

import (
	"context"
	"fmt"
	"strings"

	"switchbot_dashboard/internal/models"
	"switchbot_dashboard/internal/switchbot"
)

// Infrared remote commands exposed by the TV and light panels.
var (
	TVCommands    = []string{"turnOn", "turnOff", "channelAdd", "channelSub", "volumeAdd", "volumeSub"}
	LightCommands = []string{"turnOn", "turnOff"}
)

type ControlService struct {
	settings Settings
	api      VendorAPI
	activity ActivityLog
}

func NewControlService(settings Settings, api VendorAPI, activity ActivityLog) *ControlService {
	return &ControlService{settings: settings, api: api, activity: activity}
}

// ApplyAirConditioner sends the whole AC state as one setAll command.
func (s *ControlService) ApplyAirConditioner(ctx context.Context, deviceID string, st models.AcState) (models.CommandResult, error) {
	creds, err := s.settings.Credentials()
	if err != nil {
		return models.CommandResult{}, err
	}
	deviceID = fallback(deviceID, s.settings.Get().DeviceID)
	if deviceID == "" {
		return models.CommandResult{}, fmt.Errorf("%w: no air conditioner selected", ErrDeviceNotConfigured)
	}
	if err := st.Validate(); err != nil {
		return models.CommandResult{}, fmt.Errorf("%w: %v", ErrInvalidAcState, err)
	}

	res := s.api.SendAirConditionerCommand(ctx, creds, deviceID, st)
	if res.Success {
		record(s.activity, models.ActivitySuccess, "AC Updated", res.Payload)
	} else {
		record(s.activity, models.ActivityError, res.Message, res.Payload)
	}
	return res, nil
}

// SendTV sends an infrared TV command.
func (s *ControlService) SendTV(ctx context.Context, deviceID, command string) (models.CommandResult, error) {
	return s.sendRemote(ctx, "TV", TVCommands, fallback(deviceID, s.settings.Get().TVDeviceID), command)
}

// SendLight sends an infrared light command.
func (s *ControlService) SendLight(ctx context.Context, deviceID, command string) (models.CommandResult, error) {
	return s.sendRemote(ctx, "Light", LightCommands, fallback(deviceID, s.settings.Get().LightDeviceID), command)
}

// SendCommand passes a command through unchecked.
func (s *ControlService) SendCommand(ctx context.Context, deviceID string, cmd switchbot.CommandRequest) (models.CommandResult, error) {
	creds, err := s.settings.Credentials()
	if err != nil {
		return models.CommandResult{}, err
	}
	if strings.TrimSpace(deviceID) == "" {
		return models.CommandResult{}, fmt.Errorf("%w: device id is required", ErrDeviceNotConfigured)
	}
	if strings.TrimSpace(cmd.Command) == "" {
		return models.CommandResult{}, fmt.Errorf("%w: command is required", ErrUnsupportedCommand)
	}

	res := s.api.SendCommand(ctx, creds, deviceID, cmd)
	if res.Success {
		record(s.activity, models.ActivitySuccess, fmt.Sprintf("Command sent: %s", cmd.Command), deviceID)
	} else {
		record(s.activity, models.ActivityError, res.Message, deviceID)
	}
	return res, nil
}

func (s *ControlService) sendRemote(ctx context.Context, kind string, allowed []string, deviceID, command string) (models.CommandResult, error) {
	creds, err := s.settings.Credentials()
	if err != nil {
		return models.CommandResult{}, err
	}
	if deviceID == "" {
		return models.CommandResult{}, fmt.Errorf("%w: No %s configured.", ErrDeviceNotConfigured, kind)
	}
	if !contains(allowed, command) {
		return models.CommandResult{}, fmt.Errorf("%w: %s command %q", ErrUnsupportedCommand, kind, command)
	}

	res := s.api.SendCommand(ctx, creds, deviceID, switchbot.CommandRequest{Command: command})
	if res.Success {
		record(s.activity, models.ActivitySuccess, fmt.Sprintf("%s Command sent: %s", kind, command), command)
	} else {
		record(s.activity, models.ActivityError, res.Message, command)
	}
	return res, nil
}

func fallback(id, def string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return def
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
