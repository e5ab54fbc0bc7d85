package model

// Protocol is the routing-protocol vocabulary shared by every vendor
// parser. PAN-OS flag letters and IOS "Known via" strings both normalize
// into this set.
type Protocol string

const (
	ProtocolConnected Protocol = "connected"
	ProtocolStatic    Protocol = "static"
	ProtocolOSPF      Protocol = "ospf"
	ProtocolBGP       Protocol = "bgp"
	ProtocolEIGRP     Protocol = "eigrp"
	ProtocolISIS      Protocol = "isis"
	ProtocolRIP       Protocol = "rip"
	ProtocolLocal     Protocol = "local"
	ProtocolUnknown   Protocol = "unknown"
)

// IsDirect reports whether the protocol means the destination network is
// attached to the device itself (no next hop to follow).
func (p Protocol) IsDirect() bool {
	return p == ProtocolConnected || p == ProtocolLocal
}

// RouteEntry is one routing-table match, produced exclusively by the
// vendor parsers and never mutated afterwards.
type RouteEntry struct {
	Destination   string   `json:"destination"`         // matched prefix, CIDR
	NextHop       string   `json:"next_hop,omitempty"`  // empty for connected/local
	Interface     string   `json:"interface,omitempty"` // egress interface
	Protocol      Protocol `json:"protocol"`
	Metric        int      `json:"metric"`
	AdminDistance int      `json:"admin_distance"`
	Context       string   `json:"context"` // logical context it was resolved in
}

// IsConnected reports whether this route terminates on the device itself.
func (r *RouteEntry) IsConnected() bool {
	return r.Protocol.IsDirect() || r.NextHop == ""
}
