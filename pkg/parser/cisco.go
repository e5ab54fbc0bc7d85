package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// CiscoIOS parses IOS / IOS-XE / NX-OS style output. The route lookup uses
// the "Routing entry for ..." block format; the table dump uses the classic
// code-letter format.
type CiscoIOS struct{}

func (CiscoIOS) Vendor() model.Vendor { return model.VendorCiscoIOS }

var (
	reIOSEntryFor = regexp.MustCompile(`Routing entry for (\S+)`)
	reIOSKnownVia = regexp.MustCompile(`Known via "([^"]+)", distance (\d+), metric (\d+)`)
	// "  * 10.1.1.2, from 10.255.0.2, 00:12:34 ago, via GigabitEthernet0/1"
	reIOSNextHop = regexp.MustCompile(`^\s*\*?\s*([0-9A-Fa-f.:]+)(?:,\s+from\s+\S+)?(?:,\s+[\w:.]+\s+ago)?,\s+via\s+(\S+?),?\s*$`)
	// "  * directly connected, via GigabitEthernet0/0"
	reIOSConnected = regexp.MustCompile(`\*?\s*directly connected,\s+via\s+(\S+?),?\s*$`)
)

func (p CiscoIOS) ParseRouteEntry(raw, destination, context string) (*model.RouteEntry, error) {
	if statesNoRoute(raw) {
		return nil, nil
	}
	entryFor := reIOSEntryFor.FindStringSubmatch(raw)
	knownVia := reIOSKnownVia.FindStringSubmatch(raw)
	if entryFor == nil || knownVia == nil {
		return nil, util.NewParseError(string(p.Vendor()), "show ip route "+destination, raw)
	}

	distance, _ := strconv.Atoi(knownVia[2])
	metric, _ := strconv.Atoi(knownVia[3])
	entry := &model.RouteEntry{
		Destination:   entryFor[1],
		Protocol:      normalizeProtocol(knownVia[1]),
		Metric:        metric,
		AdminDistance: distance,
		Context:       context,
	}

	// Descriptor blocks: first starred (or first listed) next hop wins.
	for _, line := range strings.Split(raw, "\n") {
		if m := reIOSConnected.FindStringSubmatch(line); m != nil {
			entry.Interface = m[1]
			return entry, nil
		}
		if m := reIOSNextHop.FindStringSubmatch(line); m != nil {
			entry.NextHop = m[1]
			entry.Interface = m[2]
			return entry, nil
		}
	}

	// A routing entry with no descriptor block is not a shape we know.
	return nil, util.NewParseError(string(p.Vendor()), "show ip route "+destination, raw)
}

func (p CiscoIOS) ParseRoutingTable(raw, context string) ([]model.RouteEntry, error) {
	entries := parseCodedTable(raw, context)
	if len(entries) == 0 && !strings.Contains(raw, "Gateway of last resort") {
		return nil, util.NewParseError(string(p.Vendor()), "show ip route", raw)
	}
	return entries, nil
}

// "  mgmt      <not set>      ipv4      Gi0/0" — first column is the VRF name.
var reIOSVRFLine = regexp.MustCompile(`^\s{1,4}(\S+)\s+\S+`)

func (p CiscoIOS) ParseContexts(raw string) ([]string, error) {
	var names []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.Contains(line, "Name") && strings.Contains(line, "RD") {
			continue // header
		}
		m := reIOSVRFLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		names = append(names, m[1])
	}
	return names, nil
}
