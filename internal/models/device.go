package models

// Device is a single entry of the vendor device listing. IR remotes carry
// RemoteType, physical devices carry DeviceType.
type Device struct {
	DeviceID    string `json:"deviceId"`
	DeviceName  string `json:"deviceName"`
	RemoteType  string `json:"remoteType,omitempty"`
	DeviceType  string `json:"deviceType,omitempty"`
	HubDeviceID string `json:"hubDeviceId,omitempty"`
}

// CategorizedDevices groups devices into the buckets the dashboard controls.
type CategorizedDevices struct {
	AC    []Device `json:"ac"`
	TV    []Device `json:"tv"`
	Light []Device `json:"light"`
	Meter []Device `json:"meter"`
}

// EmptyCategorizedDevices returns buckets that serialize as [] rather than null.
func EmptyCategorizedDevices() CategorizedDevices {
	return CategorizedDevices{
		AC:    []Device{},
		TV:    []Device{},
		Light: []Device{},
		Meter: []Device{},
	}
}
