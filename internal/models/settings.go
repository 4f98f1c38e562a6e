package models

// Credentials authenticate every vendor call.
type Credentials struct {
	Token    string `json:"token"`
	Secret   string `json:"secret"`
	UseProxy bool   `json:"useProxy"`
}

// Settings is the persisted credential blob. DeviceID is the AC target; the
// name is kept so blobs written by older dashboards still load.
type Settings struct {
	Token         string `json:"token"`
	Secret        string `json:"secret"`
	UseProxy      bool   `json:"useProxy"`
	DeviceID      string `json:"deviceId,omitempty"`
	TVDeviceID    string `json:"tvDeviceId,omitempty"`
	LightDeviceID string `json:"lightDeviceId,omitempty"`
	MeterDeviceID string `json:"meterDeviceId,omitempty"`
}

// Credentials extracts the signing material.
func (s Settings) Credentials() Credentials {
	return Credentials{Token: s.Token, Secret: s.Secret, UseProxy: s.UseProxy}
}

// Configured reports whether both token and secret are present.
func (s Settings) Configured() bool {
	return s.Token != "" && s.Secret != ""
}

// IsZero reports an absent blob.
func (s Settings) IsZero() bool {
	return s == Settings{}
}
