package parser

import (
	"regexp"
	"strings"

	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// AristaEOS parses EOS output. Both the route lookup and the table dump use
// the code-letter line format; the lookup output carries only the routes
// matching the queried destination.
type AristaEOS struct{}

func (AristaEOS) Vendor() model.Vendor { return model.VendorAristaEOS }

// eosHeader marks output we recognize even when it carries no routes.
func eosHeader(raw string) bool {
	return strings.Contains(raw, "Codes:") || strings.Contains(raw, "VRF:") ||
		strings.Contains(raw, "VRF name:")
}

func (p AristaEOS) ParseRouteEntry(raw, destination, context string) (*model.RouteEntry, error) {
	if statesNoRoute(raw) {
		return nil, nil
	}
	entries := parseCodedTable(raw, context)
	if len(entries) == 0 {
		if eosHeader(raw) {
			// Recognized lookup output with an empty body: no route.
			return nil, nil
		}
		return nil, util.NewParseError(string(p.Vendor()), "show ip route "+destination, raw)
	}
	// EOS lists the best route first.
	return &entries[0], nil
}

func (p AristaEOS) ParseRoutingTable(raw, context string) ([]model.RouteEntry, error) {
	entries := parseCodedTable(raw, context)
	if len(entries) == 0 && !eosHeader(raw) {
		return nil, util.NewParseError(string(p.Vendor()), "show ip route", raw)
	}
	return entries, nil
}

var reEOSVRFLine = regexp.MustCompile(`^\s{0,4}(\S+)\s+\S+`)

func (p AristaEOS) ParseContexts(raw string) ([]string, error) {
	var names []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "-") {
			continue
		}
		if strings.HasPrefix(trimmed, "Vrf") || strings.HasPrefix(trimmed, "VRF") {
			continue // header
		}
		m := reEOSVRFLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		names = append(names, m[1])
	}
	return names, nil
}
