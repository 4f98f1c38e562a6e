package models

// CommandResult is the outcome of a command dispatch. Payload is only set for
// composite commands (the AC setAll string) so callers can show what was sent.
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Payload string `json:"payload,omitempty"`
}

// DeviceListResult carries categorized devices; Devices is never nil buckets.
type DeviceListResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Devices CategorizedDevices `json:"devices"`
}

// MeterReading is the subset of a meter status the dashboard displays.
type MeterReading struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

// MeterStatusResult carries Data only on success.
type MeterStatusResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    *MeterReading `json:"data,omitempty"`
}
