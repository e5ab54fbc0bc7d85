package inventory

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// deviceRecord is the on-disk shape of one inventory entry.
type deviceRecord struct {
	Hostname        string            `yaml:"hostname"`
	ManagementIP    string            `yaml:"management_ip"`
	Site            string            `yaml:"site"`
	Vendor          string            `yaml:"vendor"`
	DeviceType      string            `yaml:"device_type"`
	CredentialsRef  string            `yaml:"credentials_ref"`
	LogicalContexts []string          `yaml:"logical_contexts"`
	Subnets         []string          `yaml:"subnets"`
	DefaultContext  string            `yaml:"default_context"`
	Metadata        map[string]string `yaml:"metadata"`
}

// inventoryFile is the top-level YAML document.
type inventoryFile struct {
	Devices []deviceRecord `yaml:"devices"`
}

// LoadFile loads the inventory from a YAML file. See Load.
func LoadFile(path string, enrich SiteSource) (*Inventory, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, util.NewLoadError(path, err.Error())
	}
	inv, warnings, err := Load(data, enrich)
	if err != nil {
		var le *util.LoadError
		if errors.As(err, &le) && le.Source == "" {
			le.Source = path
		}
		return nil, nil, err
	}
	return inv, warnings, nil
}

// Load parses inventory YAML and builds the registry. Structurally invalid
// records (missing required fields, bad addresses) fail the load with a
// LoadError. Semantic duplicates never fail the load — they come back as
// human-readable advisory warnings.
//
// When enrich is non-nil it is consulted per device; a present, non-empty
// site from the enrichment source overrides the declared site value.
func Load(data []byte, enrich SiteSource) (*Inventory, []string, error) {
	var file inventoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, util.NewLoadError("", err.Error())
	}
	if len(file.Devices) == 0 {
		return nil, nil, util.NewLoadError("", "no devices defined")
	}

	devices := make([]*model.NetworkDevice, 0, len(file.Devices))
	v := &util.ValidationBuilder{}
	for i, rec := range file.Devices {
		dev, err := buildDevice(rec)
		if err != nil {
			v.AddErrorf("device[%d] (%s): %v", i, rec.Hostname, err)
			continue
		}
		if enrich != nil {
			if site, ok := enrich.SiteFor(dev.Hostname, dev.ManagementIP); ok && site != "" {
				dev.Site = site
			}
		}
		devices = append(devices, dev)
	}
	if v.HasErrors() {
		return nil, nil, util.NewLoadError("", v.Build().Error())
	}

	inv := newInventory(devices)
	return inv, duplicateWarnings(devices), nil
}

func buildDevice(rec deviceRecord) (*model.NetworkDevice, error) {
	v := &util.ValidationBuilder{}
	v.Add(rec.Hostname != "", "hostname is required")
	v.Add(rec.ManagementIP != "", "management_ip is required")
	if rec.ManagementIP != "" && !util.IsValidIP(rec.ManagementIP) {
		v.AddErrorf("invalid management IP '%s'", rec.ManagementIP)
	}
	for _, cidr := range rec.Subnets {
		if !util.IsValidCIDR(cidr) {
			v.AddErrorf("invalid subnet '%s'", cidr)
		}
	}

	vendor, err := model.ParseVendor(rec.Vendor)
	if err != nil {
		v.AddError(err.Error())
	}
	devType, err := model.ParseDeviceType(rec.DeviceType)
	if err != nil {
		v.AddError(err.Error())
	}
	if err := v.Build(); err != nil {
		return nil, err
	}

	dev := &model.NetworkDevice{
		Hostname:        rec.Hostname,
		ManagementIP:    rec.ManagementIP,
		Site:            rec.Site,
		Vendor:          vendor,
		DeviceType:      devType,
		CredentialsRef:  rec.CredentialsRef,
		LogicalContexts: rec.LogicalContexts,
		Subnets:         rec.Subnets,
		DefaultContext:  rec.DefaultContext,
		Metadata:        rec.Metadata,
	}

	// Defaults per the inventory schema
	if dev.CredentialsRef == "" {
		dev.CredentialsRef = "default"
	}
	if dev.DefaultContext == "" {
		dev.DefaultContext = model.DefaultContext
	}
	if len(dev.LogicalContexts) == 0 {
		dev.LogicalContexts = []string{model.DefaultContext}
	} else if !dev.HasContext(model.DefaultContext) {
		// Every device has the default "global" context.
		dev.LogicalContexts = append([]string{model.DefaultContext}, dev.LogicalContexts...)
	}

	return dev, nil
}

// duplicateWarnings reports semantic duplicates: the same management IP on
// two or more devices, and overlapping subnet claims at the same site.
func duplicateWarnings(devices []*model.NetworkDevice) []string {
	var warnings []string

	byIP := make(map[string][]*model.NetworkDevice)
	for _, d := range devices {
		byIP[d.ManagementIP] = append(byIP[d.ManagementIP], d)
	}
	ips := make([]string, 0, len(byIP))
	for ip := range byIP {
		ips = append(ips, ip)
	}
	sort.Strings(ips)
	for _, ip := range ips {
		dups := byIP[ip]
		if len(dups) < 2 {
			continue
		}
		names := make([]string, len(dups))
		for i, d := range dups {
			names[i] = d.Key()
		}
		sort.Strings(names)
		warnings = append(warnings, fmt.Sprintf(
			"management IP %s is shared by %d devices: %v", ip, len(dups), names))
	}

	// Overlapping subnets only matter within one site — reuse across sites
	// is the expected VXLAN-underlay pattern.
	for i, a := range devices {
		for _, b := range devices[i+1:] {
			if a.Site != b.Site {
				continue
			}
			if cidrA, cidrB, ok := overlappingSubnets(a, b); ok {
				warnings = append(warnings, fmt.Sprintf(
					"devices %s and %s at site '%s' claim overlapping subnets %s and %s",
					a.Hostname, b.Hostname, a.Site, cidrA, cidrB))
			}
		}
	}

	return warnings
}

// overlappingSubnets returns the first overlapping subnet pair between two
// devices. Two CIDRs overlap when either network address falls inside the
// other prefix.
func overlappingSubnets(a, b *model.NetworkDevice) (string, string, bool) {
	for _, ca := range a.Subnets {
		ipA, _ := util.SplitIPMask(ca)
		for _, cb := range b.Subnets {
			ipB, _ := util.SplitIPMask(cb)
			inA, _, errA := util.SubnetContains(ca, ipB)
			inB, _, errB := util.SubnetContains(cb, ipA)
			if errA != nil || errB != nil {
				continue
			}
			if inA || inB {
				return ca, cb, true
			}
		}
	}
	return "", "", false
}
