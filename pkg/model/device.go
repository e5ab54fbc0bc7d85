// Package model defines the shared domain types for path tracing:
// devices, route entries, and trace results. Types here are plain data
// carriers — behavior lives in the inventory, driver, and trace packages.
package model

import "fmt"

// Vendor identifies the CLI dialect a device speaks.
type Vendor string

const (
	VendorCiscoIOS    Vendor = "cisco_ios"
	VendorAristaEOS   Vendor = "arista_eos"
	VendorPANOS       Vendor = "paloalto_panos"
	VendorArubaCX     Vendor = "aruba_cx"
	VendorArubaSwitch Vendor = "aruba_switch"
)

// ParseVendor validates a vendor string from an inventory record.
func ParseVendor(s string) (Vendor, error) {
	switch Vendor(s) {
	case VendorCiscoIOS, VendorAristaEOS, VendorPANOS, VendorArubaCX, VendorArubaSwitch:
		return Vendor(s), nil
	}
	return "", fmt.Errorf("unknown vendor '%s'", s)
}

// DeviceType is a coarse role classification, informational only.
type DeviceType string

const (
	DeviceTypeRouter       DeviceType = "router"
	DeviceTypeSwitch       DeviceType = "switch"
	DeviceTypeFirewall     DeviceType = "firewall"
	DeviceTypeLoadBalancer DeviceType = "load_balancer"
	DeviceTypeUnknown      DeviceType = "unknown"
)

// ParseDeviceType maps an inventory string to a DeviceType, defaulting
// to unknown for empty input.
func ParseDeviceType(s string) (DeviceType, error) {
	if s == "" {
		return DeviceTypeUnknown, nil
	}
	switch DeviceType(s) {
	case DeviceTypeRouter, DeviceTypeSwitch, DeviceTypeFirewall, DeviceTypeLoadBalancer, DeviceTypeUnknown:
		return DeviceType(s), nil
	}
	return "", fmt.Errorf("unknown device type '%s'", s)
}

// DefaultContext is the logical context every device has.
const DefaultContext = "global"

// NetworkDevice is the identity and reachability record for one manageable
// device. Records are owned by the inventory and immutable during a trace;
// hostname+site is the effective unique key when management IPs are reused
// across sites (anycast loopbacks, VXLAN underlays).
type NetworkDevice struct {
	Hostname        string            `json:"hostname" yaml:"hostname"`
	ManagementIP    string            `json:"management_ip" yaml:"management_ip"`
	Site            string            `json:"site,omitempty" yaml:"site,omitempty"`
	Vendor          Vendor            `json:"vendor" yaml:"vendor"`
	DeviceType      DeviceType        `json:"device_type" yaml:"device_type"`
	CredentialsRef  string            `json:"credentials_ref" yaml:"credentials_ref"`
	LogicalContexts []string          `json:"logical_contexts" yaml:"logical_contexts"`
	Subnets         []string          `json:"subnets,omitempty" yaml:"subnets,omitempty"`
	DefaultContext  string            `json:"default_context" yaml:"default_context"`
	Metadata        map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// HasContext reports whether the device lists the named logical context.
func (d *NetworkDevice) HasContext(name string) bool {
	for _, c := range d.LogicalContexts {
		if c == name {
			return true
		}
	}
	return false
}

// Key returns the hostname-site identity used when management IPs collide.
func (d *NetworkDevice) Key() string {
	if d.Site == "" {
		return d.Hostname
	}
	return d.Hostname + "@" + d.Site
}

func (d *NetworkDevice) String() string {
	return fmt.Sprintf("%s (%s)", d.Key(), d.ManagementIP)
}
