// Package driver owns remote management sessions to network devices. Each
// vendor driver implements the same capability contract — open a session,
// look up a route, enumerate logical contexts, close — over its own command
// syntax, delegating all output decoding to the matching parser.
//
// Sessions are scoped resources: the orchestrator opens one immediately
// before a hop's queries and closes it on every exit path. No session is
// reused across hops.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/tracewalk-network/tracewalk/pkg/credentials"
	"github.com/tracewalk-network/tracewalk/pkg/model"
)

// Session is an open management session to one device.
type Session interface {
	// GetRoute returns the best route toward destination in the given
	// logical context, or (nil, nil) when the device has none.
	GetRoute(ctx context.Context, destination, logicalContext string) (*model.RouteEntry, error)

	// ListContexts enumerates the VRFs / virtual routers the device knows,
	// always including the default "global" context.
	ListContexts(ctx context.Context) ([]string, error)

	// Close releases the session. Idempotent.
	Close() error
}

// Driver opens sessions to devices of one vendor.
type Driver interface {
	Vendor() model.Vendor
	Open(ctx context.Context, device *model.NetworkDevice, creds credentials.Credentials, timeout time.Duration) (Session, error)
}

// Factory selects a driver by the vendor recorded in the device's
// inventory entry.
type Factory interface {
	ForVendor(v model.Vendor) (Driver, error)
}

// Registry is the default Factory. The dial function is replaceable so
// vendor drivers can be exercised against a fake transport.
type Registry struct {
	dial DialFunc
}

// NewRegistry creates a registry that dials devices over SSH.
func NewRegistry() *Registry {
	return &Registry{dial: DialSSH}
}

// NewRegistryWithDial creates a registry with a custom transport dialer.
func NewRegistryWithDial(dial DialFunc) *Registry {
	return &Registry{dial: dial}
}

// ForVendor returns the driver for a vendor.
func (r *Registry) ForVendor(v model.Vendor) (Driver, error) {
	switch v {
	case model.VendorCiscoIOS:
		return &ciscoDriver{dial: r.dial}, nil
	case model.VendorAristaEOS:
		return &aristaDriver{dial: r.dial}, nil
	case model.VendorPANOS:
		return &panosDriver{dial: r.dial}, nil
	case model.VendorArubaCX, model.VendorArubaSwitch:
		return &arubaDriver{dial: r.dial, vendor: v}, nil
	}
	return nil, fmt.Errorf("no driver for vendor '%s'", v)
}

// ensureDefaultContext guarantees the "global" context is present in a
// context listing, first.
func ensureDefaultContext(names []string) []string {
	for _, n := range names {
		if n == model.DefaultContext {
			return names
		}
	}
	return append([]string{model.DefaultContext}, names...)
}
