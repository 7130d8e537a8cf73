// Package devicestatus observes live device state for display: network
// reachability, battery level, and ambient light. Each monitor owns nothing
// beyond the latest observed sample; there is no smoothing or debouncing.
// The platform readings themselves come from injected sources.
package devicestatus

// NetworkType classifies the active network transport.
type NetworkType string

const (
	NetworkNone     NetworkType = "none"
	NetworkWiFi     NetworkType = "wifi"
	NetworkCellular NetworkType = "cellular"
)

// Capabilities is one platform reading of the active network.
type Capabilities struct {
	Internet  bool // has internet capability
	Validated bool // connectivity actually validated
	WiFi      bool
	Cellular  bool
}

// NetworkState is the derived display state. Connected requires both the
// internet capability and the validated flag.
type NetworkState struct {
	Connected bool        `json:"connected"`
	Type      NetworkType `json:"type"`
}

// LightLevel classifies ambient light.
type LightLevel string

const (
	LightDark   LightLevel = "Dark"
	LightNormal LightLevel = "Normal"
	LightBright LightLevel = "Bright"
)

// Light thresholds in lux.
const (
	brightThreshold = 100
	normalThreshold = 50
)

// ClassifyLight maps a lux reading onto a display level.
func ClassifyLight(lux float64) LightLevel {
	switch {
	case lux > brightThreshold:
		return LightBright
	case lux > normalThreshold:
		return LightNormal
	default:
		return LightDark
	}
}

// ClassifyNetwork maps a capability reading onto a display state.
func ClassifyNetwork(c Capabilities) NetworkState {
	state := NetworkState{
		Connected: c.Internet && c.Validated,
		Type:      NetworkNone,
	}
	if !state.Connected {
		return state
	}
	switch {
	case c.WiFi:
		state.Type = NetworkWiFi
	case c.Cellular:
		state.Type = NetworkCellular
	}
	return state
}

// BatteryState is one battery reading.
type BatteryState struct {
	Percent  int  `json:"percent"`
	Charging bool `json:"charging"`
}

// Report bundles the latest sample of every monitor.
type Report struct {
	Network NetworkState `json:"network"`
	Battery BatteryState `json:"battery"`
	Light   LightLevel   `json:"light"`
}
