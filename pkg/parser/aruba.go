package parser

import (
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// ArubaCX parses AOS-CX route output:
//
//	192.168.100.0/24, vrf default
//	        via 10.1.1.2, [110/20], ospf
//
// ArubaSwitch parses the legacy AOS-Switch column table. The Aruba driver
// probes the modern format first and retries the same text against the
// legacy parser on parse failure.
type ArubaCX struct{}

func (ArubaCX) Vendor() model.Vendor { return model.VendorArubaCX }

var (
	reCXDest = regexp.MustCompile(`^(\S+/\d+),\s+vrf\s+(\S+)`)
	reCXVia  = regexp.MustCompile(`^\s+via\s+(\S+?),\s+\[(\d+)/(\d+)\],\s+(\S+)`)
)

func cxHeader(raw string) bool {
	return strings.Contains(raw, "Displaying ipv4 routes") ||
		strings.Contains(raw, "denotes [distance/metric]")
}

func (p ArubaCX) ParseRouteEntry(raw, destination, context string) (*model.RouteEntry, error) {
	if statesNoRoute(raw) {
		return nil, nil
	}
	entries, err := p.ParseRoutingTable(raw, context)
	if err != nil {
		return nil, util.NewParseError(string(p.Vendor()), "show ip route "+destination, raw)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	// CX prints the selected forwarding route first.
	return &entries[0], nil
}

func (p ArubaCX) ParseRoutingTable(raw, context string) ([]model.RouteEntry, error) {
	var entries []model.RouteEntry
	var current string // destination of the block being read

	for _, line := range strings.Split(raw, "\n") {
		if m := reCXDest.FindStringSubmatch(line); m != nil {
			current = m[1]
			continue
		}
		m := reCXVia.FindStringSubmatch(line)
		if m == nil || current == "" {
			continue
		}
		distance, _ := strconv.Atoi(m[2])
		metric, _ := strconv.Atoi(m[3])
		entry := model.RouteEntry{
			Destination:   current,
			Protocol:      normalizeProtocol(m[4]),
			Metric:        metric,
			AdminDistance: distance,
			Context:       context,
		}
		// "via" names the next-hop IP for routed entries and the egress
		// interface for connected/local ones.
		if net.ParseIP(m[1]) != nil {
			entry.NextHop = m[1]
		} else {
			entry.Interface = m[1]
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 && !cxHeader(raw) {
		return nil, util.NewParseError(string(p.Vendor()), "show ip route", raw)
	}
	return entries, nil
}

var reCXVRFName = regexp.MustCompile(`VRF Name\s*:\s*(\S+)`)

func (p ArubaCX) ParseContexts(raw string) ([]string, error) {
	matches := reCXVRFName.FindAllStringSubmatch(raw, -1)
	if matches == nil {
		return nil, util.NewParseError(string(p.Vendor()), "show vrf", raw)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names, nil
}

// ArubaSwitch parses the legacy AOS-Switch tabular format:
//
//	Destination        Gateway         VLAN Type      Sub-Type   Metric     Dist.
//	------------------ --------------- ---- --------- ---------- ---------- -----
//	192.168.100.0/24   10.1.1.2        10   ospf      intra      20         110
//	10.10.0.0/16       DEFAULT_VLAN    1    connected            1          0
type ArubaSwitch struct{}

func (ArubaSwitch) Vendor() model.Vendor { return model.VendorArubaSwitch }

func switchHeader(raw string) bool {
	return strings.Contains(raw, "IP Route Entries")
}

// parseSwitchLine decodes one table row. The Sub-Type column may be blank,
// so the metric and distance are taken from the line's tail.
func parseSwitchLine(line, context string) (*model.RouteEntry, bool) {
	fields := strings.Fields(line)
	if len(fields) < 6 || len(fields) > 7 || !strings.Contains(fields[0], "/") {
		return nil, false
	}
	metric, errM := strconv.Atoi(fields[len(fields)-2])
	distance, errD := strconv.Atoi(fields[len(fields)-1])
	if errM != nil || errD != nil {
		return nil, false
	}

	entry := &model.RouteEntry{
		Destination:   fields[0],
		Protocol:      normalizeProtocol(fields[3]),
		Metric:        metric,
		AdminDistance: distance,
		Context:       context,
	}
	if entry.Protocol == model.ProtocolUnknown {
		return nil, false
	}
	if entry.Protocol.IsDirect() {
		entry.Interface = fields[1] // gateway column names the VLAN interface
	} else {
		entry.NextHop = fields[1]
		entry.Interface = "vlan" + fields[2]
	}
	return entry, true
}

func (p ArubaSwitch) ParseRouteEntry(raw, destination, context string) (*model.RouteEntry, error) {
	if statesNoRoute(raw) {
		return nil, nil
	}
	entries, err := p.ParseRoutingTable(raw, context)
	if err != nil {
		return nil, util.NewParseError(string(p.Vendor()), "show ip route "+destination, raw)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (p ArubaSwitch) ParseRoutingTable(raw, context string) ([]model.RouteEntry, error) {
	var entries []model.RouteEntry
	for _, line := range strings.Split(raw, "\n") {
		if entry, ok := parseSwitchLine(line, context); ok {
			entries = append(entries, *entry)
		}
	}
	if len(entries) == 0 && !switchHeader(raw) {
		return nil, util.NewParseError(string(p.Vendor()), "show ip route", raw)
	}
	return entries, nil
}

// ParseContexts returns nil: AOS-Switch has no VRF support, the driver
// reports only the default context.
func (p ArubaSwitch) ParseContexts(raw string) ([]string, error) {
	return nil, nil
}
