package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// PANOS parses Palo Alto route output: a column table whose "flags" field
// encodes activeness and protocol as letters (A:active, C:connect, S:static,
// O*:ospf, B:bgp, R:rip, H:host). PAN-OS calls contexts "virtual routers".
type PANOS struct{}

func (PANOS) Vendor() model.Vendor { return model.VendorPANOS }

// panFlags maps PAN-OS flag letters to the shared protocol vocabulary.
// OSPF has sub-flags (Oi, Oo, O1, O2) that all normalize to ospf.
var panFlags = map[string]model.Protocol{
	"C":  model.ProtocolConnected,
	"H":  model.ProtocolLocal,
	"S":  model.ProtocolStatic,
	"R":  model.ProtocolRIP,
	"O":  model.ProtocolOSPF,
	"Oi": model.ProtocolOSPF,
	"Oo": model.ProtocolOSPF,
	"O1": model.ProtocolOSPF,
	"O2": model.ProtocolOSPF,
	"B":  model.ProtocolBGP,
}

// panAdminDistance supplies PAN-OS default administrative distances; the
// route table output does not carry them.
var panAdminDistance = map[model.Protocol]int{
	model.ProtocolConnected: 0,
	model.ProtocolLocal:     0,
	model.ProtocolStatic:    10,
	model.ProtocolBGP:       20,
	model.ProtocolOSPF:      30,
	model.ProtocolRIP:       120,
}

// nonProtocolFlags are PAN-OS flags that carry no protocol meaning.
var nonProtocolFlags = map[string]bool{
	"A": true, // active
	"?": true, // loose
	"~": true, // internal
	"E": true, // ecmp
	"M": true, // multicast
}

type panRoute struct {
	entry  model.RouteEntry
	active bool
}

var reAllDigits = regexp.MustCompile(`^\d+$`)

// parsePANLine decodes one route line:
//
//	10.0.0.0/24    10.1.1.2    10    A B    1200    ethernet1/1
//
// The age column is absent for connected and static routes, so fields after
// the metric are classified token by token instead of by position.
func parsePANLine(line, context string) (*panRoute, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 || !strings.Contains(fields[0], "/") {
		return nil, false
	}
	metric, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, false
	}

	r := &panRoute{entry: model.RouteEntry{
		Destination: fields[0],
		NextHop:     fields[1],
		Metric:      metric,
		Protocol:    model.ProtocolUnknown,
		Context:     context,
	}}

	for _, tok := range fields[3:] {
		switch {
		case nonProtocolFlags[tok]:
			if tok == "A" {
				r.active = true
			}
		case panFlags[tok] != "":
			if r.entry.Protocol == model.ProtocolUnknown {
				r.entry.Protocol = panFlags[tok]
			}
		case reAllDigits.MatchString(tok):
			// age column
		default:
			r.entry.Interface = tok
		}
	}

	if r.entry.Protocol == model.ProtocolUnknown {
		return nil, false
	}
	r.entry.AdminDistance = panAdminDistance[r.entry.Protocol]
	if r.entry.Protocol.IsDirect() {
		// PAN-OS reports the interface address as the next hop of connect
		// routes; the shared model uses an empty next hop for those.
		r.entry.NextHop = ""
	}
	return r, true
}

func panHeader(raw string) bool {
	return strings.Contains(raw, "flags:") || strings.Contains(raw, "VIRTUAL ROUTER:") ||
		strings.Contains(raw, "total routes shown")
}

func parsePANRoutes(raw, context string) []panRoute {
	var routes []panRoute
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "destination") {
			continue // column header
		}
		if r, ok := parsePANLine(line, context); ok {
			routes = append(routes, *r)
		}
	}
	return routes
}

func (p PANOS) ParseRouteEntry(raw, destination, context string) (*model.RouteEntry, error) {
	if statesNoRoute(raw) {
		return nil, nil
	}
	routes := parsePANRoutes(raw, context)
	if len(routes) == 0 {
		if panHeader(raw) {
			return nil, nil
		}
		return nil, util.NewParseError(string(p.Vendor()), "show routing route destination "+destination, raw)
	}

	// Best active route: longest prefix, then lowest distance, then metric.
	active := routes[:0:0]
	for _, r := range routes {
		if r.active {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}
	sort.SliceStable(active, func(i, j int) bool {
		_, li := util.SplitIPMask(active[i].entry.Destination)
		_, lj := util.SplitIPMask(active[j].entry.Destination)
		if li != lj {
			return li > lj
		}
		if active[i].entry.AdminDistance != active[j].entry.AdminDistance {
			return active[i].entry.AdminDistance < active[j].entry.AdminDistance
		}
		return active[i].entry.Metric < active[j].entry.Metric
	})
	best := active[0].entry
	return &best, nil
}

func (p PANOS) ParseRoutingTable(raw, context string) ([]model.RouteEntry, error) {
	routes := parsePANRoutes(raw, context)
	if len(routes) == 0 && !panHeader(raw) {
		return nil, util.NewParseError(string(p.Vendor()), "show routing route", raw)
	}
	entries := make([]model.RouteEntry, 0, len(routes))
	for _, r := range routes {
		entries = append(entries, r.entry)
	}
	return entries, nil
}

var rePANVirtualRouter = regexp.MustCompile(`VIRTUAL ROUTER:\s+(\S+)`)

func (p PANOS) ParseContexts(raw string) ([]string, error) {
	matches := rePANVirtualRouter.FindAllStringSubmatch(raw, -1)
	if matches == nil {
		return nil, util.NewParseError(string(p.Vendor()), "show routing summary", raw)
	}
	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names, nil
}
