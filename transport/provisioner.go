// File: transport/provisioner.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"log"

	"github.com/momentics/lightws/api"
)

// NullProvisioner satisfies api.Provisioner on hosts whose network is
// already up. Embedded targets substitute a real radio driver here.
type NullProvisioner struct{}

// Start logs the requested provisioning and reports the network ready.
func (NullProvisioner) Start(cfg api.NetworkConfig) error {
	if cfg.SSID != "" {
		log.Printf("lightws: network %s mode, ssid %q (host stack, no-op)", cfg.Mode, cfg.SSID)
	} else {
		log.Printf("lightws: network %s mode (host stack, no-op)", cfg.Mode)
	}
	return nil
}

// Stop tears nothing down on a host.
func (NullProvisioner) Stop() error {
	return nil
}
