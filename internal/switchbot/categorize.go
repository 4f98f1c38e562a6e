package switchbot

import (
	"strings"

	"switchbot_dashboard/internal/models"
)

// IR remote types routed to the TV bucket.
var tvRemoteTypes = map[string]bool{
	"TV":          true,
	"IPTV":        true,
	"Set Top Box": true,
}

// Categorize partitions the vendor lists into the dashboard buckets. Devices
// matching no rule are dropped. Order within a bucket follows the input.
func Categorize(deviceList, infraredRemoteList []models.Device) models.CategorizedDevices {
	out := models.EmptyCategorizedDevices()

	for _, d := range infraredRemoteList {
		if d.RemoteType == "Air Conditioner" {
			out.AC = append(out.AC, d)
		}
		if tvRemoteTypes[d.RemoteType] {
			out.TV = append(out.TV, d)
		}
		if d.RemoteType == "Light" {
			out.Light = append(out.Light, d)
		}
	}

	for _, d := range deviceList {
		if isPhysicalLight(d.DeviceType) {
			out.Light = append(out.Light, d)
		}
		if isMeter(d.DeviceType) {
			out.Meter = append(out.Meter, d)
		}
	}

	return out
}

// Bot and Plug are treated as lights because they usually switch lamps. This
// is a guess, not something the vendor documents.
func isPhysicalLight(t string) bool {
	return strings.Contains(t, "Light") ||
		strings.Contains(t, "Bulb") ||
		strings.Contains(t, "Strip") ||
		t == "Bot" ||
		t == "Plug"
}

func isMeter(t string) bool {
	return strings.Contains(t, "Meter") || strings.Contains(t, "Hub 2")
}
