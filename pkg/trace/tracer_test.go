package trace

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewalk-network/tracewalk/pkg/credentials"
	"github.com/tracewalk-network/tracewalk/pkg/driver"
	"github.com/tracewalk-network/tracewalk/pkg/inventory"
	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

const testInventory = `
devices:
  - hostname: edge1
    management_ip: 10.255.0.1
    site: nyc
    vendor: cisco_ios
    subnets: [10.1.1.0/24]
  - hostname: core1
    management_ip: 10.255.0.2
    site: nyc
    vendor: arista_eos
    logical_contexts: [global, CUST-A]
  - hostname: fw1
    management_ip: 10.255.0.3
    site: nyc
    vendor: paloalto_panos
    subnets: [10.0.12.0/24]
  - hostname: dist1
    management_ip: 10.255.0.4
    site: nyc
    vendor: aruba_cx
    subnets: [10.3.3.0/24]
  - hostname: dist1
    management_ip: 10.255.0.5
    site: lon
    vendor: aruba_cx
    subnets: [10.3.3.0/24]
  - hostname: amb1
    management_ip: 10.255.0.6
    site: nyc
    vendor: cisco_ios
    subnets: [10.4.4.0/24]
  - hostname: amb2
    management_ip: 10.255.0.7
    site: nyc
    vendor: cisco_ios
    subnets: [10.4.4.0/24]
  - hostname: twin1
    management_ip: 10.255.0.8
    site: sfo
    vendor: cisco_ios
    subnets: [10.2.2.0/24]
  - hostname: twin2
    management_ip: 10.255.0.9
    site: ber
    vendor: cisco_ios
    subnets: [10.2.2.0/24]
  - hostname: c1
    management_ip: 10.255.1.1
    site: chx
    vendor: cisco_ios
  - hostname: c2
    management_ip: 10.255.1.2
    site: chx
    vendor: cisco_ios
  - hostname: c3
    management_ip: 10.255.1.3
    site: chx
    vendor: cisco_ios
  - hostname: c4
    management_ip: 10.255.1.4
    site: chx
    vendor: cisco_ios
  - hostname: c5
    management_ip: 10.255.1.5
    site: chx
    vendor: cisco_ios
  - hostname: c6
    management_ip: 10.255.1.6
    site: chx
    vendor: cisco_ios
`

const testDest = "10.9.0.55"

// fakeFactory serves scripted routing tables keyed by "mgmtIP|context".
type fakeFactory struct {
	routes  map[string]map[string]*model.RouteEntry
	openErr map[string]error
	opens   int
}

func (f *fakeFactory) ForVendor(v model.Vendor) (driver.Driver, error) {
	return &fakeDriver{f: f, vendor: v}, nil
}

type fakeDriver struct {
	f      *fakeFactory
	vendor model.Vendor
}

func (d *fakeDriver) Vendor() model.Vendor { return d.vendor }

func (d *fakeDriver) Open(_ context.Context, device *model.NetworkDevice, _ credentials.Credentials, _ time.Duration) (driver.Session, error) {
	if err := d.f.openErr[device.ManagementIP]; err != nil {
		return nil, err
	}
	d.f.opens++
	return &fakeSession{f: d.f, device: device}, nil
}

type fakeSession struct {
	f      *fakeFactory
	device *model.NetworkDevice
}

func (s *fakeSession) GetRoute(_ context.Context, destination, logicalContext string) (*model.RouteEntry, error) {
	// An absent table entry is a positive "no route".
	return s.f.routes[s.device.ManagementIP+"|"+logicalContext][destination], nil
}

func (s *fakeSession) ListContexts(_ context.Context) ([]string, error) {
	return s.device.LogicalContexts, nil
}

func (s *fakeSession) Close() error { return nil }

func viaRoute(dest, nextHop, iface string, proto model.Protocol) *model.RouteEntry {
	return &model.RouteEntry{
		Destination: dest,
		NextHop:     nextHop,
		Interface:   iface,
		Protocol:    proto,
	}
}

func connectedRoute(dest, iface string) *model.RouteEntry {
	return &model.RouteEntry{
		Destination: dest,
		Interface:   iface,
		Protocol:    model.ProtocolConnected,
	}
}

func newTestTracer(t *testing.T, f *fakeFactory, opts Options) *Tracer {
	t.Helper()
	inv, _, err := inventory.Load([]byte(testInventory), nil)
	require.NoError(t, err)
	creds := credentials.NewResolver()
	creds.SetDefault(credentials.Credentials{Username: "admin", Password: "pw"})
	return New(inv, creds, f, opts)
}

func TestTraceComplete(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.1|global": {testDest: viaRoute("10.9.0.0/16", "10.255.0.2", "GigabitEthernet0/1", model.ProtocolOSPF)},
		"10.255.0.2|global": {testDest: viaRoute("10.9.0.0/16", "10.0.12.9", "Ethernet1", model.ProtocolBGP)},
		"10.255.0.3|global": {testDest: connectedRoute("10.9.0.0/24", "ethernet1/2")},
	}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{SourceIP: "10.1.1.10", DestinationIP: testDest})

	assert.Equal(t, model.StatusComplete, path.Status)
	require.Len(t, path.Hops, 3)
	assert.Empty(t, path.ErrorMessage)
	assert.True(t, path.Terminal())

	for i, hop := range path.Hops {
		assert.Equal(t, i+1, hop.Sequence)
	}
	assert.Equal(t, "edge1", path.Hops[0].Device.Hostname)
	assert.Equal(t, model.ResolveOK, path.Hops[0].ResolveStatus)
	assert.Equal(t, "GigabitEthernet0/1", path.Hops[0].EgressInterface)
	assert.Equal(t, "core1", path.Hops[1].Device.Hostname)
	assert.Equal(t, "fw1", path.Hops[2].Device.Hostname)
	assert.Contains(t, path.Hops[2].Notes, "directly connected")
}

func TestTraceStartDeviceOverride(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.2|global": {testDest: viaRoute("10.9.0.0/16", "10.0.12.9", "Ethernet1", model.ProtocolBGP)},
		"10.255.0.3|global": {testDest: connectedRoute("10.9.0.0/24", "ethernet1/2")},
	}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{
		SourceIP:      "10.1.1.10",
		DestinationIP: testDest,
		StartDevice:   "core1",
	})

	assert.Equal(t, model.StatusComplete, path.Status)
	require.Len(t, path.Hops, 2)
	assert.Equal(t, "core1", path.Hops[0].Device.Hostname)
}

func TestTraceStartDeviceAmbiguousHostname(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{}}
	tr := newTestTracer(t, f, Options{})

	// dist1 exists at nyc and lon; without a site the override is ambiguous.
	path := tr.TracePath(context.Background(), Request{
		SourceIP:      "10.1.1.10",
		DestinationIP: testDest,
		StartDevice:   "dist1",
	})
	assert.Equal(t, model.StatusNeedsInput, path.Status)
	assert.Empty(t, path.Hops)

	f.routes["10.255.0.5|global"] = map[string]*model.RouteEntry{
		testDest: connectedRoute("10.9.0.0/24", "1/1/2"),
	}
	path = tr.TracePath(context.Background(), Request{
		SourceIP:      "10.1.1.10",
		DestinationIP: testDest,
		StartDevice:   "dist1",
		StartSite:     "lon",
	})
	assert.Equal(t, model.StatusComplete, path.Status)
}

func TestTraceSourceNotFound(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{SourceIP: "203.0.113.5", DestinationIP: testDest})

	assert.Equal(t, model.StatusNeedsInput, path.Status)
	assert.Empty(t, path.Hops)
	assert.Contains(t, path.ErrorMessage, "203.0.113.5")
	assert.Zero(t, f.opens, "no session may be opened without a starting device")
}

func TestTraceSourceAmbiguous(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{}}
	tr := newTestTracer(t, f, Options{})

	// 10.2.2.5 is claimed by twin1@sfo and twin2@ber, with no previous hop
	// to supply site affinity.
	path := tr.TracePath(context.Background(), Request{SourceIP: "10.2.2.5", DestinationIP: testDest})

	assert.Equal(t, model.StatusNeedsInput, path.Status)
	require.Len(t, path.Candidates, 2)
	assert.Empty(t, path.Hops)
}

func TestTraceSiteAffinity(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.1|global": {testDest: viaRoute("10.9.0.0/16", "10.3.3.3", "GigabitEthernet0/2", model.ProtocolOSPF)},
		"10.255.0.4|global": {testDest: connectedRoute("10.9.0.0/24", "1/1/5")},
	}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{SourceIP: "10.1.1.10", DestinationIP: testDest})

	assert.Equal(t, model.StatusComplete, path.Status)
	require.Len(t, path.Hops, 2)
	// 10.3.3.3 matches dist1 at both nyc and lon; the previous hop sits at
	// nyc, so its twin is chosen without asking for input.
	assert.Equal(t, "10.255.0.4", path.Hops[1].Device.ManagementIP)
	assert.Equal(t, model.ResolveBySite, path.Hops[1].ResolveStatus)
}

func TestTraceAmbiguousHop(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.1|global": {testDest: viaRoute("10.9.0.0/16", "10.4.4.4", "GigabitEthernet0/3", model.ProtocolOSPF)},
	}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{SourceIP: "10.1.1.10", DestinationIP: testDest})

	// amb1 and amb2 both sit at nyc, so site affinity cannot break the tie.
	assert.Equal(t, model.StatusAmbiguousHop, path.Status)
	require.Len(t, path.Hops, 1)
	require.Len(t, path.Candidates, 2)
	assert.Contains(t, path.Hops[0].Notes, "10.4.4.4")
}

func TestTraceLoopDetected(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.1|global": {testDest: viaRoute("10.9.0.0/16", "10.255.0.2", "GigabitEthernet0/1", model.ProtocolOSPF)},
		"10.255.0.2|global": {testDest: viaRoute("10.9.0.0/16", "10.255.0.1", "Ethernet1", model.ProtocolOSPF)},
	}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{SourceIP: "10.1.1.10", DestinationIP: testDest})

	assert.Equal(t, model.StatusLoopDetected, path.Status)
	// Both devices were legitimately visited once; the loop is detected on
	// the attempted revisit, before any third session.
	require.Len(t, path.Hops, 2)
	assert.Equal(t, 2, f.opens)
	assert.Contains(t, path.ErrorMessage, "edge1")
}

func TestTraceBlackholed(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.1|global": {testDest: viaRoute("10.9.0.0/16", "10.255.0.2", "GigabitEthernet0/1", model.ProtocolOSPF)},
		// core1 has a table but no route toward the destination.
		"10.255.0.2|global": {},
	}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{SourceIP: "10.1.1.10", DestinationIP: testDest})

	assert.Equal(t, model.StatusBlackholed, path.Status)
	require.Len(t, path.Hops, 2)
	assert.Equal(t, "no route to destination", path.Hops[1].Notes)
	assert.Nil(t, path.Hops[1].Route)
}

func TestTraceMaxHopsExceeded(t *testing.T) {
	routes := make(map[string]map[string]*model.RouteEntry)
	for i := 1; i <= 5; i++ {
		routes[fmt.Sprintf("10.255.1.%d|global", i)] = map[string]*model.RouteEntry{
			testDest: viaRoute("10.9.0.0/16", fmt.Sprintf("10.255.1.%d", i+1), "Gi0/0", model.ProtocolOSPF),
		}
	}
	f := &fakeFactory{routes: routes}
	tr := newTestTracer(t, f, Options{MaxHops: 5})

	path := tr.TracePath(context.Background(), Request{
		SourceIP:      "192.0.2.1",
		DestinationIP: testDest,
		StartDevice:   "c1",
	})

	assert.Equal(t, model.StatusMaxHopsExceeded, path.Status)
	require.Len(t, path.Hops, 5)
	assert.Equal(t, "c5", path.Hops[4].Device.Hostname)
}

func TestTraceErrorPreservesPartialPath(t *testing.T) {
	f := &fakeFactory{
		routes: map[string]map[string]*model.RouteEntry{
			"10.255.0.1|global": {testDest: viaRoute("10.9.0.0/16", "10.255.0.2", "GigabitEthernet0/1", model.ProtocolOSPF)},
		},
		openErr: map[string]error{
			"10.255.0.2": &util.ConnectError{Device: "core1", Addr: "10.255.0.2:22", Reason: util.ErrAuthFailed},
		},
	}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{SourceIP: "10.1.1.10", DestinationIP: testDest})

	assert.Equal(t, model.StatusError, path.Status)
	// The failed hop is excluded; everything walked before it is kept.
	require.Len(t, path.Hops, 1)
	assert.Contains(t, path.ErrorMessage, "hop 2")
	assert.Contains(t, path.ErrorMessage, "core1")
}

func TestTraceUnknownCredentialRef(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{}}
	inv, _, err := inventory.Load([]byte(testInventory), nil)
	require.NoError(t, err)
	tr := New(inv, credentials.NewResolver(), f, Options{})

	path := tr.TracePath(context.Background(), Request{SourceIP: "10.1.1.10", DestinationIP: testDest})

	assert.Equal(t, model.StatusError, path.Status)
	assert.Empty(t, path.Hops)
	assert.Contains(t, path.ErrorMessage, "credential")
}

func TestTraceContextTransition(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.2|CUST-A": {testDest: viaRoute("10.9.0.0/16", "10.0.12.9", "Ethernet2", model.ProtocolBGP)},
		"10.255.0.3|global": {testDest: connectedRoute("10.9.0.0/24", "ethernet1/2")},
	}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{
		SourceIP:      "10.1.1.10",
		DestinationIP: testDest,
		StartDevice:   "core1",
		StartContext:  "CUST-A",
	})

	assert.Equal(t, model.StatusComplete, path.Status)
	require.Len(t, path.Hops, 2)
	assert.Equal(t, "CUST-A", path.Hops[0].Context)
	// fw1 does not carry CUST-A, so the walk falls back to its default.
	assert.Equal(t, model.DefaultContext, path.Hops[1].Context)
}

func TestTraceUnknownContext(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{
		SourceIP:      "10.1.1.10",
		DestinationIP: testDest,
		StartDevice:   "core1",
		StartContext:  "NOPE",
	})

	assert.Equal(t, model.StatusError, path.Status)
	assert.Contains(t, path.ErrorMessage, "NOPE")
}

func TestTraceConnectedRouteNotContainingDestination(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.1|global": {testDest: connectedRoute("192.168.50.0/24", "GigabitEthernet0/9")},
	}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{SourceIP: "10.1.1.10", DestinationIP: testDest})

	assert.Equal(t, model.StatusIncomplete, path.Status)
	require.Len(t, path.Hops, 1)
	assert.Contains(t, path.Hops[0].Notes, "does not contain destination")
}

func TestTraceNextHopNotInInventory(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.1|global": {testDest: viaRoute("10.9.0.0/16", "172.31.9.9", "GigabitEthernet0/1", model.ProtocolStatic)},
	}}
	tr := newTestTracer(t, f, Options{})

	path := tr.TracePath(context.Background(), Request{SourceIP: "10.1.1.10", DestinationIP: testDest})

	assert.Equal(t, model.StatusIncomplete, path.Status)
	require.Len(t, path.Hops, 1)
	assert.Contains(t, path.Hops[0].Notes, "172.31.9.9")
}

type fakeCache struct {
	store map[string]*model.TracePath
}

func (c *fakeCache) Get(_ context.Context, key string) (*model.TracePath, bool) {
	p, ok := c.store[key]
	return p, ok
}

func (c *fakeCache) Put(_ context.Context, key string, path *model.TracePath) {
	c.store[key] = path
}

func TestTraceResultCache(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.1|global": {testDest: connectedRoute("10.9.0.0/16", "GigabitEthernet0/1")},
	}}
	cache := &fakeCache{store: make(map[string]*model.TracePath)}
	tr := newTestTracer(t, f, Options{Cache: cache})
	req := Request{SourceIP: "10.1.1.10", DestinationIP: testDest}

	first := tr.TracePath(context.Background(), req)
	require.Equal(t, model.StatusComplete, first.Status)
	require.Equal(t, 1, f.opens)
	require.Len(t, cache.store, 1)

	second := tr.TracePath(context.Background(), req)
	assert.Equal(t, model.StatusComplete, second.Status)
	assert.Equal(t, 1, f.opens, "cached result must not open sessions")
}

func TestTraceNonCompleteResultsNotCached(t *testing.T) {
	f := &fakeFactory{routes: map[string]map[string]*model.RouteEntry{
		"10.255.0.1|global": {},
	}}
	cache := &fakeCache{store: make(map[string]*model.TracePath)}
	tr := newTestTracer(t, f, Options{Cache: cache})

	path := tr.TracePath(context.Background(), Request{SourceIP: "10.1.1.10", DestinationIP: testDest})
	require.Equal(t, model.StatusBlackholed, path.Status)
	assert.Empty(t, cache.store)
}

func TestResolveDeviceManagementIPBeatsSubnet(t *testing.T) {
	tr := newTestTracer(t, &fakeFactory{}, Options{})

	// 10.255.0.1 is edge1's management IP; exact matches win before any
	// subnet scan.
	res := tr.ResolveDevice("10.255.0.1", nil)
	assert.Equal(t, model.ResolveOK, res.Status)
	assert.Equal(t, "edge1", res.Device.Hostname)
}
