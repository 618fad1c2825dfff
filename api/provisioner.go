// File: api/provisioner.go
// Author: momentics <momentics@gmail.com>
//
// Network provisioning seam. On embedded targets the provisioner
// brings up the radio in access-point or station mode before the
// listener binds; on hosts a no-op implementation is enough.

package api

// Mode selects how the network is provisioned.
type Mode uint8

const (
	// ModeAP provisions a local access point.
	ModeAP Mode = iota
	// ModeSTA joins an existing network as a station.
	ModeSTA
)

// String returns the canonical lower-case mode name.
func (m Mode) String() string {
	switch m {
	case ModeAP:
		return "ap"
	case ModeSTA:
		return "sta"
	default:
		return "unknown"
	}
}

// NetworkConfig carries the provisioning parameters.
type NetworkConfig struct {
	Mode     Mode
	SSID     string
	Password string
}

// Provisioner brings the underlying network up and down.
type Provisioner interface {
	// Start makes the network ready for the listener to bind.
	Start(cfg NetworkConfig) error

	// Stop tears the network down.
	Stop() error
}
