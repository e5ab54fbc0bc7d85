// Package inventory owns the device registry: it loads NetworkDevice
// records from a declarative YAML source and answers identity and
// topology queries (management IP, owned subnet, hostname).
//
// The registry is built once at load time and read-only afterwards, so it
// may be shared across concurrent traces without locking.
package inventory

import (
	"fmt"
	"sort"

	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// Inventory is the in-memory device registry.
type Inventory struct {
	devices []*model.NetworkDevice

	// byMgmtIP may hold several devices per address: identical underlay
	// addressing across sites is valid and expected.
	byMgmtIP   map[string][]*model.NetworkDevice
	byHostname map[string][]*model.NetworkDevice
}

func newInventory(devices []*model.NetworkDevice) *Inventory {
	inv := &Inventory{
		devices:    devices,
		byMgmtIP:   make(map[string][]*model.NetworkDevice),
		byHostname: make(map[string][]*model.NetworkDevice),
	}
	for _, d := range devices {
		inv.byMgmtIP[d.ManagementIP] = append(inv.byMgmtIP[d.ManagementIP], d)
		inv.byHostname[d.Hostname] = append(inv.byHostname[d.Hostname], d)
	}
	return inv
}

// Devices returns all registered devices in load order.
func (inv *Inventory) Devices() []*model.NetworkDevice {
	return inv.devices
}

// Len returns the number of registered devices.
func (inv *Inventory) Len() int {
	return len(inv.devices)
}

// FindByManagementIP returns every device whose management IP matches
// exactly. More than one match is possible across sites.
func (inv *Inventory) FindByManagementIP(ip string) []*model.NetworkDevice {
	matches := append([]*model.NetworkDevice(nil), inv.byMgmtIP[ip]...)
	sortDevices(matches)
	return matches
}

// FindBySubnet returns every device owning a subnet that contains the IP,
// restricted to the ties at the longest matching prefix length. Returning
// the full tied set is deliberate: disambiguation is the caller's decision,
// not an accident of scan order.
func (inv *Inventory) FindBySubnet(ip string) []*model.NetworkDevice {
	bestLen := -1
	var matches []*model.NetworkDevice

	for _, d := range inv.devices {
		deviceBest := -1
		for _, cidr := range d.Subnets {
			contains, prefixLen, err := util.SubnetContains(cidr, ip)
			if err != nil || !contains {
				continue
			}
			if prefixLen > deviceBest {
				deviceBest = prefixLen
			}
		}
		if deviceBest < 0 {
			continue
		}
		switch {
		case deviceBest > bestLen:
			bestLen = deviceBest
			matches = []*model.NetworkDevice{d}
		case deviceBest == bestLen:
			matches = append(matches, d)
		}
	}

	sortDevices(matches)
	return matches
}

// FindByHostname returns the device with the given hostname. When the same
// hostname exists at multiple sites the lookup is ambiguous and an error
// naming the candidate sites is returned; use FindByHostnameSite instead.
func (inv *Inventory) FindByHostname(name string) (*model.NetworkDevice, error) {
	matches := inv.byHostname[name]
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("device '%s': %w", name, util.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	sites := make([]string, 0, len(matches))
	for _, d := range matches {
		sites = append(sites, d.Site)
	}
	sort.Strings(sites)
	return nil, fmt.Errorf("device '%s' exists at multiple sites %v, qualify with a site", name, sites)
}

// FindByHostnameSite returns the device with the given hostname at the
// given site.
func (inv *Inventory) FindByHostnameSite(name, site string) (*model.NetworkDevice, error) {
	for _, d := range inv.byHostname[name] {
		if d.Site == site {
			return d, nil
		}
	}
	return nil, fmt.Errorf("device '%s' at site '%s': %w", name, site, util.ErrNotFound)
}

// sortDevices orders candidates by hostname then site so resolution results
// are deterministic regardless of map iteration order.
func sortDevices(devices []*model.NetworkDevice) {
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Hostname != devices[j].Hostname {
			return devices[i].Hostname < devices[j].Hostname
		}
		return devices[i].Site < devices[j].Site
	})
}
