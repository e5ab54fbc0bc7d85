package model

import (
	"fmt"
	"time"
)

// PathStatus is the closed set of trace outcomes. Ambiguity and not-found
// are first-class statuses, not errors — they carry candidate lists so a
// caller can resume the trace with an explicit start device.
type PathStatus string

const (
	StatusComplete        PathStatus = "complete"
	StatusIncomplete      PathStatus = "incomplete"
	StatusError           PathStatus = "error"
	StatusLoopDetected    PathStatus = "loop_detected"
	StatusBlackholed      PathStatus = "blackholed"
	StatusMaxHopsExceeded PathStatus = "max_hops_exceeded"
	StatusNeedsInput      PathStatus = "needs_input"
	StatusAmbiguousHop    PathStatus = "ambiguous_hop"
)

// ResolveStatus tags the outcome of resolving an IP to a device.
type ResolveStatus string

const (
	ResolveOK        ResolveStatus = "resolved"
	ResolveBySite    ResolveStatus = "resolved_by_site"
	ResolveNotFound  ResolveStatus = "not_found"
	ResolveAmbiguous ResolveStatus = "ambiguous"
)

// ResolveResult is the output of device resolution: the chosen device (nil
// unless status is resolved/resolved_by_site) and every candidate considered.
type ResolveResult struct {
	Device     *NetworkDevice   `json:"device,omitempty"`
	Status     ResolveStatus    `json:"status"`
	Candidates []*NetworkDevice `json:"candidates,omitempty"`
}

// PathHop is one step in a trace. Hops are append-only history: created
// once after a successful device query and never mutated.
type PathHop struct {
	Sequence         int            `json:"sequence"` // 1-based
	Device           *NetworkDevice `json:"device"`
	IngressInterface string         `json:"ingress_interface,omitempty"` // unknown on first hop
	EgressInterface  string         `json:"egress_interface,omitempty"`  // unknown on final/blackholed hop
	Context          string         `json:"context"`
	Route            *RouteEntry    `json:"route,omitempty"` // nil if none found
	Latency          time.Duration  `json:"latency_ns"`
	ResolveStatus    ResolveStatus  `json:"resolve_status,omitempty"`
	Notes            string         `json:"notes,omitempty"`
}

// TracePath is the overall result of one trace invocation. Once terminal it
// is never extended in place — continuation after needs_input/ambiguous_hop
// produces a new TracePath the caller stitches together.
type TracePath struct {
	SourceIP      string           `json:"source_ip"`
	DestinationIP string           `json:"destination_ip"`
	Hops          []PathHop        `json:"hops"`
	Status        PathStatus       `json:"status"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	Candidates    []*NetworkDevice `json:"candidates,omitempty"` // on needs_input / ambiguous_hop
	Elapsed       time.Duration    `json:"elapsed_ns"`
}

// AppendHop adds a hop with the next sequence number. Sequence numbers are
// strictly increasing with no gaps; callers pass hops without a sequence.
func (p *TracePath) AppendHop(hop PathHop) {
	hop.Sequence = len(p.Hops) + 1
	p.Hops = append(p.Hops, hop)
}

// LastHop returns the most recent hop, or nil for an empty path.
func (p *TracePath) LastHop() *PathHop {
	if len(p.Hops) == 0 {
		return nil
	}
	return &p.Hops[len(p.Hops)-1]
}

// Terminal reports whether the trace reached its destination network.
func (p *TracePath) Terminal() bool {
	return p.Status == StatusComplete
}

func (p *TracePath) String() string {
	return fmt.Sprintf("%s -> %s: %s (%d hops)", p.SourceIP, p.DestinationIP, p.Status, len(p.Hops))
}
