// Package parser turns raw vendor CLI text into structured route data.
// Parsers are pure functions over text: no I/O, no sessions, no shared
// state. Drivers own the commands; parsers own the output shapes.
//
// A parser returns (nil, nil) when the output positively states that no
// route exists, and a ParseError when the output is unrecognizable. The
// two are never collapsed: "no route" is a routing fact, garbage is not.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tracewalk-network/tracewalk/pkg/model"
)

// Parser is one vendor dialect's output decoder.
type Parser interface {
	Vendor() model.Vendor

	// ParseRouteEntry extracts the best route toward destination from the
	// output of the vendor's "show route to X" command. Returns (nil, nil)
	// when the device reports no matching route.
	ParseRouteEntry(raw, destination, context string) (*model.RouteEntry, error)

	// ParseRoutingTable extracts every route from a full routing-table dump.
	ParseRoutingTable(raw, context string) ([]model.RouteEntry, error)

	// ParseContexts extracts VRF / virtual-router names from the vendor's
	// context-listing command output.
	ParseContexts(raw string) ([]string, error)
}

// ForVendor returns the parser for a vendor dialect.
func ForVendor(v model.Vendor) (Parser, error) {
	switch v {
	case model.VendorCiscoIOS:
		return CiscoIOS{}, nil
	case model.VendorAristaEOS:
		return AristaEOS{}, nil
	case model.VendorPANOS:
		return PANOS{}, nil
	case model.VendorArubaCX:
		return ArubaCX{}, nil
	case model.VendorArubaSwitch:
		return ArubaSwitch{}, nil
	}
	return nil, fmt.Errorf("no parser for vendor '%s'", v)
}

// normalizeProtocol maps vendor protocol words ("ospf 1", "bgp 65000",
// "O E2", "local") onto the shared vocabulary.
func normalizeProtocol(s string) model.Protocol {
	word := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(word, ' '); i >= 0 {
		word = word[:i]
	}
	switch word {
	case "connected", "direct", "c":
		return model.ProtocolConnected
	case "local", "l":
		return model.ProtocolLocal
	case "static", "s":
		return model.ProtocolStatic
	case "ospf", "ospfv3", "o":
		return model.ProtocolOSPF
	case "bgp", "b":
		return model.ProtocolBGP
	case "eigrp", "d":
		return model.ProtocolEIGRP
	case "isis", "is-is", "i":
		return model.ProtocolISIS
	case "rip", "r":
		return model.ProtocolRIP
	}
	return model.ProtocolUnknown
}

// routeCodes maps the single-letter route codes used by IOS- and EOS-style
// routing tables. Modifier suffixes (E1, E2, IA, *, candidate default) are
// stripped before lookup.
var routeCodes = map[string]model.Protocol{
	"C": model.ProtocolConnected,
	"L": model.ProtocolLocal,
	"S": model.ProtocolStatic,
	"O": model.ProtocolOSPF,
	"B": model.ProtocolBGP,
	"D": model.ProtocolEIGRP,
	"i": model.ProtocolISIS,
	"I": model.ProtocolISIS,
	"R": model.ProtocolRIP,
}

func protocolFromCode(code string) model.Protocol {
	code = strings.TrimRight(code, "*")
	if p, ok := routeCodes[code]; ok {
		return p
	}
	// Composite codes like "O E2", "O IA", "B E", "i L1"
	if len(code) > 0 {
		if p, ok := routeCodes[code[:1]]; ok {
			return p
		}
	}
	return model.ProtocolUnknown
}

var (
	// "O        10.0.0.0/24 [110/20] via 10.1.1.2, 00:12:34, GigabitEthernet0/1"
	// "B E      172.16.0.0/16 [200/0] via 10.255.0.9, Ethernet2"
	reCodedVia = regexp.MustCompile(
		`^\s*([A-Za-z][A-Za-z0-9* ]{0,4}?)\s+(\S+/\d+)\s+\[(\d+)/(\d+)\]\s+via\s+(\S+?),(?:\s+[\d:]+,)?\s+(\S+)\s*$`)

	// "C        10.1.1.0/30 is directly connected, GigabitEthernet0/1"
	reCodedConnected = regexp.MustCompile(
		`^\s*([A-Za-z][A-Za-z0-9* ]{0,4}?)\s+(\S+/\d+)\s+is directly connected,\s+(\S+)\s*$`)
)

// parseCodedTable handles the classic code-letter routing-table body shared
// by Cisco IOS and Arista EOS.
func parseCodedTable(raw, context string) []model.RouteEntry {
	var entries []model.RouteEntry
	for _, line := range strings.Split(raw, "\n") {
		if m := reCodedVia.FindStringSubmatch(line); m != nil {
			distance, _ := strconv.Atoi(m[3])
			metric, _ := strconv.Atoi(m[4])
			entries = append(entries, model.RouteEntry{
				Destination:   m[2],
				NextHop:       strings.TrimSuffix(m[5], ","),
				Interface:     m[6],
				Protocol:      protocolFromCode(strings.TrimSpace(m[1])),
				Metric:        metric,
				AdminDistance: distance,
				Context:       context,
			})
			continue
		}
		if m := reCodedConnected.FindStringSubmatch(line); m != nil {
			entries = append(entries, model.RouteEntry{
				Destination: m[2],
				Interface:   m[3],
				Protocol:    protocolFromCode(strings.TrimSpace(m[1])),
				Context:     context,
			})
		}
	}
	return entries
}

// noRoutePhrases are vendor statements that positively mean "no route".
var noRoutePhrases = []string{
	"% network not in table",
	"% subnet not in table",
	"% route not found",
	"no route found",
	"no ip routes match",
	"route to destination does not exist",
}

func statesNoRoute(raw string) bool {
	lower := strings.ToLower(raw)
	for _, phrase := range noRoutePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
