// Package trace implements the hop-by-hop path trace state machine: resolve
// a starting device, query its route to the destination, advance to the
// next-hop device, repeat until a terminal condition. Loop detection, VRF
// transition, and ambiguous-IP resolution all live here.
//
// A trace runs strictly sequentially — one session open, query, close per
// hop — and shares no state with concurrent traces beyond the read-only
// inventory.
package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/tracewalk-network/tracewalk/pkg/credentials"
	"github.com/tracewalk-network/tracewalk/pkg/driver"
	"github.com/tracewalk-network/tracewalk/pkg/inventory"
	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// Defaults applied by New when Options leaves them zero.
const (
	DefaultMaxHops    = 30
	DefaultHopTimeout = 15 * time.Second
)

// Options tunes one Tracer.
type Options struct {
	MaxHops    int
	HopTimeout time.Duration
	Cache      Cache // optional result cache, nil disables caching
}

// Request describes one trace invocation. StartDevice (with StartSite when
// the hostname exists at several sites) overrides source-IP resolution —
// the continuation flow after a needs_input or ambiguous_hop result.
type Request struct {
	SourceIP      string
	DestinationIP string
	StartDevice   string
	StartSite     string
	StartContext  string
}

// Tracer executes path traces against one inventory. Safe for concurrent
// use: per-trace state (visited set, hop list) is local to each call.
type Tracer struct {
	inventory *inventory.Inventory
	creds     *credentials.Resolver
	drivers   driver.Factory
	opts      Options
}

// New creates a Tracer. Inventory, credential resolver, and driver factory
// are explicit dependencies — nothing is looked up ambiently during a trace.
func New(inv *inventory.Inventory, creds *credentials.Resolver, drivers driver.Factory, opts Options) *Tracer {
	if opts.MaxHops <= 0 {
		opts.MaxHops = DefaultMaxHops
	}
	if opts.HopTimeout <= 0 {
		opts.HopTimeout = DefaultHopTimeout
	}
	return &Tracer{inventory: inv, creds: creds, drivers: drivers, opts: opts}
}

// TracePath walks the forwarding path from the source to the destination.
// Every outcome, including failures, is reported through the returned
// TracePath — hops collected before a failure are always preserved.
func (t *Tracer) TracePath(ctx context.Context, req Request) *model.TracePath {
	started := time.Now()
	path := &model.TracePath{SourceIP: req.SourceIP, DestinationIP: req.DestinationIP}
	log := util.WithTrace(req.SourceIP, req.DestinationIP)

	finish := func(status model.PathStatus, msg string) *model.TracePath {
		path.Status = status
		path.ErrorMessage = msg
		path.Elapsed = time.Since(started)
		log.WithField("status", status).Infof("trace finished with %d hops", len(path.Hops))
		if t.opts.Cache != nil && status == model.StatusComplete {
			t.opts.Cache.Put(ctx, cacheKey(req), path)
		}
		return path
	}

	if t.opts.Cache != nil {
		if cached, ok := t.opts.Cache.Get(ctx, cacheKey(req)); ok {
			log.Debug("trace served from cache")
			return cached
		}
	}

	// Starting device: explicit override, or source-IP resolution.
	current, resolveStatus, res, err := t.startingDevice(req)
	if err != nil {
		return finish(model.StatusNeedsInput, err.Error())
	}
	if current == nil {
		path.Candidates = res.Candidates
		return finish(model.StatusNeedsInput,
			fmt.Sprintf("cannot resolve source %s to a device (%s)", req.SourceIP, res.Status))
	}

	currentContext := req.StartContext
	if currentContext == "" {
		currentContext = current.DefaultContext
	}

	visited := make(map[string]bool)

	for hopCount := 0; hopCount < t.opts.MaxHops; hopCount++ {
		key := current.ManagementIP + "|" + currentContext
		if visited[key] {
			return finish(model.StatusLoopDetected,
				fmt.Sprintf("already visited %s in context '%s'", current, currentContext))
		}
		visited[key] = true

		hopStart := time.Now()
		route, err := t.queryRoute(ctx, current, currentContext, req.DestinationIP)
		latency := time.Since(hopStart)
		if err != nil {
			// Connect, auth, credential, and parse failures are fatal to
			// this invocation; the partial path excludes the failed hop.
			return finish(model.StatusError,
				fmt.Sprintf("hop %d on %s: %v", len(path.Hops)+1, current, err))
		}

		hop := model.PathHop{
			Device:        current,
			Context:       currentContext,
			Route:         route,
			Latency:       latency,
			ResolveStatus: resolveStatus,
		}

		if route == nil {
			hop.Notes = "no route to destination"
			path.AppendHop(hop)
			return finish(model.StatusBlackholed,
				fmt.Sprintf("%s has no route to %s in context '%s'", current, req.DestinationIP, currentContext))
		}
		hop.EgressInterface = route.Interface
		log.WithField("device", current.Hostname).Debugf(
			"hop %d: %s via %s (%s)", len(path.Hops)+1, route.Destination, route.NextHop, route.Protocol)

		if route.IsConnected() {
			contains, _, cErr := util.SubnetContains(route.Destination, req.DestinationIP)
			if cErr == nil && contains {
				hop.Notes = "destination network is directly connected"
				path.AppendHop(hop)
				return finish(model.StatusComplete, "")
			}
			// A direct route that does not cover the destination leaves
			// nothing to advance to.
			hop.Notes = fmt.Sprintf("connected route %s does not contain destination", route.Destination)
			path.AppendHop(hop)
			return finish(model.StatusIncomplete, hop.Notes)
		}

		next := t.ResolveDevice(route.NextHop, &hop)
		switch next.Status {
		case model.ResolveNotFound:
			hop.Notes = fmt.Sprintf("next hop %s is not in the inventory", route.NextHop)
			path.AppendHop(hop)
			return finish(model.StatusIncomplete, hop.Notes)
		case model.ResolveAmbiguous:
			hop.Notes = fmt.Sprintf("next hop %s matches %d devices", route.NextHop, len(next.Candidates))
			path.AppendHop(hop)
			path.Candidates = next.Candidates
			return finish(model.StatusAmbiguousHop, hop.Notes)
		}

		path.AppendHop(hop)
		current = next.Device
		resolveStatus = next.Status
		currentContext = t.nextContext(currentContext, next.Device)
	}

	return finish(model.StatusMaxHopsExceeded,
		fmt.Sprintf("no terminal condition within %d hops", t.opts.MaxHops))
}

// startingDevice applies the explicit start override or resolves the
// source IP. A nil device with a nil error means needs_input.
func (t *Tracer) startingDevice(req Request) (*model.NetworkDevice, model.ResolveStatus, model.ResolveResult, error) {
	if req.StartDevice != "" {
		var dev *model.NetworkDevice
		var err error
		if req.StartSite != "" {
			dev, err = t.inventory.FindByHostnameSite(req.StartDevice, req.StartSite)
		} else {
			dev, err = t.inventory.FindByHostname(req.StartDevice)
		}
		if err != nil {
			return nil, "", model.ResolveResult{}, fmt.Errorf("start device: %w", err)
		}
		return dev, model.ResolveOK, model.ResolveResult{}, nil
	}

	res := t.ResolveDevice(req.SourceIP, nil)
	if res.Status == model.ResolveNotFound || res.Status == model.ResolveAmbiguous {
		return nil, "", res, nil
	}
	return res.Device, res.Status, res, nil
}

// queryRoute opens a session to the device, validates the requested
// context, and looks up the route. The session never outlives the call.
func (t *Tracer) queryRoute(ctx context.Context, device *model.NetworkDevice, logicalContext, destination string) (*model.RouteEntry, error) {
	creds, err := t.creds.Resolve(device.CredentialsRef)
	if err != nil {
		return nil, err
	}
	drv, err := t.drivers.ForVendor(device.Vendor)
	if err != nil {
		return nil, err
	}

	hopCtx, cancel := context.WithTimeout(ctx, t.opts.HopTimeout)
	defer cancel()

	session, err := drv.Open(hopCtx, device, creds, t.opts.HopTimeout)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if logicalContext != model.DefaultContext {
		known, err := session.ListContexts(hopCtx)
		if err != nil {
			return nil, err
		}
		if !containsString(known, logicalContext) {
			return nil, fmt.Errorf("device %s does not have context '%s': %w",
				device.Hostname, logicalContext, util.ErrContextNotFound)
		}
	}

	return session.GetRoute(hopCtx, destination, logicalContext)
}

// nextContext picks the context for the next device: keep the current one
// when the next device lists it, otherwise use that device's default.
// Known simplification — route-leaking VRFs are not modeled, and this
// heuristic is kept exactly as simple as it looks.
func (t *Tracer) nextContext(currentContext string, next *model.NetworkDevice) string {
	if next.HasContext(currentContext) {
		return currentContext
	}
	return next.DefaultContext
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
