package util

import (
	"regexp"
	"sort"
	"strings"
)

// ParseInterfaceName extracts interface type and number
// Returns (type, number, subinterface) e.g., ("GigabitEthernet", "0/0", "100") for GigabitEthernet0/0.100
func ParseInterfaceName(name string) (ifType string, num string, subintf string) {
	// Check for subinterface
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		subintf = parts[1]
		name = parts[0]
	}

	matches := parseInterfaceRegexp.FindStringSubmatch(name)
	if len(matches) == 3 {
		return matches[1], matches[2], subintf
	}

	return name, "", subintf
}

var parseInterfaceRegexp = regexp.MustCompile(`^([A-Za-z-]+)([\d/:]+)$`)

// Interface name mappings (long <-> short)
var (
	// longToShort maps full interface type names to abbreviations
	longToShort = map[string]string{
		"Ethernet":             "Eth",
		"FastEthernet":         "Fa",
		"GigabitEthernet":      "Gi",
		"TenGigabitEthernet":   "Te",
		"TwentyFiveGigE":       "Twe",
		"FortyGigabitEthernet": "Fo",
		"HundredGigE":          "Hu",
		"Port-channel":         "Po",
		"Port-Channel":         "Po",
		"Loopback":             "Lo",
		"Vlan":                 "Vl",
		"Tunnel":               "Tu",
		"Management":           "Mgmt",
	}

	// shortToLong maps abbreviations to full interface type names
	shortToLong = map[string]string{
		"eth":  "Ethernet",
		"fa":   "FastEthernet",
		"gi":   "GigabitEthernet",
		"te":   "TenGigabitEthernet",
		"fo":   "FortyGigabitEthernet",
		"hu":   "HundredGigE",
		"po":   "Port-channel",
		"lo":   "Loopback",
		"vl":   "Vlan",
		"vlan": "Vlan",
		"tu":   "Tunnel",
		"mgmt": "Management",
	}

	// shortToLongSorted contains abbreviation keys sorted longest-first
	// so that "vlan" is matched before "vl" in NormalizeInterfaceName.
	shortToLongSorted []string
)

func init() {
	shortToLongSorted = make([]string, 0, len(shortToLong))
	for k := range shortToLong {
		shortToLongSorted = append(shortToLongSorted, k)
	}
	sort.Slice(shortToLongSorted, func(i, j int) bool {
		return len(shortToLongSorted[i]) > len(shortToLongSorted[j])
	})
}

// ShortenInterfaceName converts a full interface name to short form
// GigabitEthernet0/1 -> Gi0/1, Port-channel100 -> Po100, Vlan100 -> Vl100
func ShortenInterfaceName(name string) string {
	ifType, num, subintf := ParseInterfaceName(name)

	if short, ok := longToShort[ifType]; ok {
		result := short + num
		if subintf != "" {
			result += "." + subintf
		}
		return result
	}

	return name
}

// NormalizeInterfaceName expands an abbreviated interface name to full form
// gi0/1 -> GigabitEthernet0/1, po100 -> Port-channel100, etc.
func NormalizeInterfaceName(name string) string {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)

	for _, abbr := range shortToLongSorted {
		if strings.HasPrefix(lower, abbr) && len(name) > len(abbr) {
			suffix := name[len(abbr):]
			if len(suffix) > 0 && suffix[0] >= '0' && suffix[0] <= '9' {
				return shortToLong[abbr] + suffix
			}
		}
	}

	// Already in full form or unknown
	return name
}
