package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tracewalk-network/tracewalk/pkg/credentials"
	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/parser"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// arubaDriver covers both Aruba dialects. Devices inventoried as aruba_cx
// get a dialect probe: the modern AOS-CX parse is attempted first, and on
// parse failure the same output is re-parsed as legacy AOS-Switch. The
// fallback is parser-level — no second command is issued for the probe.
// Devices inventoried as aruba_switch skip straight to the legacy dialect.
type arubaDriver struct {
	dial   DialFunc
	vendor model.Vendor
}

func (d *arubaDriver) Vendor() model.Vendor { return d.vendor }

func (d *arubaDriver) Open(ctx context.Context, device *model.NetworkDevice, creds credentials.Credentials, timeout time.Duration) (Session, error) {
	t, err := d.dial(ctx, device, creds, timeout)
	if err != nil {
		return nil, err
	}
	return &arubaSession{
		baseSession: baseSession{transport: t, device: device},
		legacy:      d.vendor == model.VendorArubaSwitch,
	}, nil
}

type arubaSession struct {
	baseSession
	legacy bool // AOS-Switch dialect, set at open or confirmed by probe
}

func (s *arubaSession) GetRoute(ctx context.Context, destination, logicalContext string) (*model.RouteEntry, error) {
	if s.legacy {
		return s.legacyGetRoute(ctx, destination, logicalContext)
	}

	cmd := "show ip route " + destination
	if logicalContext != model.DefaultContext {
		cmd = fmt.Sprintf("show ip route %s vrf %s", destination, logicalContext)
	}
	raw, err := s.transport.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}

	entry, err := parser.ArubaCX{}.ParseRouteEntry(raw, destination, logicalContext)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, util.ErrParse) {
		return nil, err
	}

	// Dialect probe: an AOS-Switch answers the CX command with its own
	// table format. If the legacy parser accepts the output, pin the
	// session to the legacy dialect.
	legacyEntry, legacyErr := parser.ArubaSwitch{}.ParseRouteEntry(raw, destination, logicalContext)
	if legacyErr != nil {
		return nil, err // report the primary dialect's parse failure
	}
	s.legacy = true
	util.WithDevice(s.device.Hostname).Debug("AOS-CX parse failed, pinned legacy AOS-Switch dialect")
	return legacyEntry, nil
}

func (s *arubaSession) legacyGetRoute(ctx context.Context, destination, logicalContext string) (*model.RouteEntry, error) {
	if logicalContext != model.DefaultContext {
		return nil, fmt.Errorf("AOS-Switch has no VRF support, context '%s': %w",
			logicalContext, util.ErrContextNotFound)
	}
	raw, err := s.transport.Run(ctx, "show ip route "+destination)
	if err != nil {
		return nil, err
	}
	return parser.ArubaSwitch{}.ParseRouteEntry(raw, destination, logicalContext)
}

func (s *arubaSession) ListContexts(ctx context.Context) ([]string, error) {
	if s.legacy {
		return []string{model.DefaultContext}, nil
	}
	raw, err := s.transport.Run(ctx, "show vrf")
	if err != nil {
		return nil, err
	}
	names, err := parser.ArubaCX{}.ParseContexts(raw)
	if err != nil {
		return nil, err
	}
	return ensureDefaultContext(names), nil
}
