package models

import "fmt"

type AcMode string

const (
	AcModeAuto AcMode = "auto"
	AcModeCool AcMode = "cool"
	AcModeDry  AcMode = "dry"
	AcModeFan  AcMode = "fan"
	AcModeHeat AcMode = "heat"
)

type FanSpeed string

const (
	FanSpeedAuto   FanSpeed = "auto"
	FanSpeedLow    FanSpeed = "low"
	FanSpeedMedium FanSpeed = "medium"
	FanSpeedHigh   FanSpeed = "high"
)

type PowerState string

const (
	PowerOn  PowerState = "on"
	PowerOff PowerState = "off"
)

const (
	MinAcTemperature = 16
	MaxAcTemperature = 30
)

// Vendor numeric codes used in the setAll parameter.
var (
	ModeCodes = map[AcMode]int{
		AcModeAuto: 1,
		AcModeCool: 2,
		AcModeDry:  3,
		AcModeFan:  4,
		AcModeHeat: 5,
	}
	FanCodes = map[FanSpeed]int{
		FanSpeedAuto:   1,
		FanSpeedLow:    2,
		FanSpeedMedium: 3,
		FanSpeedHigh:   4,
	}
)

// AcState is the climate control intent applied to an IR air conditioner.
type AcState struct {
	Temperature int        `json:"temperature"`
	Mode        AcMode     `json:"mode"`
	FanSpeed    FanSpeed   `json:"fanSpeed"`
	Power       PowerState `json:"power"`
}

// DefaultAcState mirrors the dashboard's initial AC panel.
func DefaultAcState() AcState {
	return AcState{
		Temperature: 26,
		Mode:        AcModeCool,
		FanSpeed:    FanSpeedAuto,
		Power:       PowerOn,
	}
}

// Validate reports the first field outside its allowed range.
func (s AcState) Validate() error {
	if s.Temperature < MinAcTemperature || s.Temperature > MaxAcTemperature {
		return fmt.Errorf("temperature %d out of range [%d,%d]", s.Temperature, MinAcTemperature, MaxAcTemperature)
	}
	if _, ok := ModeCodes[s.Mode]; !ok {
		return fmt.Errorf("unknown mode %q", s.Mode)
	}
	if _, ok := FanCodes[s.FanSpeed]; !ok {
		return fmt.Errorf("unknown fan speed %q", s.FanSpeed)
	}
	if s.Power != PowerOn && s.Power != PowerOff {
		return fmt.Errorf("unknown power state %q", s.Power)
	}
	return nil
}

// Parameter builds the "<temp>,<mode>,<fan>,<power>" string for the setAll command.
func (s AcState) Parameter() string {
	return fmt.Sprintf("%d,%d,%d,%s", s.Temperature, ModeCodes[s.Mode], FanCodes[s.FanSpeed], s.Power)
}
