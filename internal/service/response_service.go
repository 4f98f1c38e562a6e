package service

import (
	"errors"
	"time"
)

// LogFilter supports activity filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "SUCCESS", "ERROR", "INFO"
}

// SettingsSource tells where the startup settings came from.
type SettingsSource string

const (
	SourceStored SettingsSource = "stored"
	SourceEnv    SettingsSource = "env"
	SourceEmpty  SettingsSource = "empty"
)

// Configuration failures, reported before any vendor call.
var (
	ErrNotConfigured       = errors.New("switchbot credentials are not configured")
	ErrDeviceNotConfigured = errors.New("device is not configured")
	ErrInvalidSettings     = errors.New("token and secret are required")
	ErrInvalidAcState      = errors.New("invalid air conditioner state")
	ErrUnsupportedCommand  = errors.New("unsupported command")
)
