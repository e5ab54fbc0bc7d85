package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/tracewalk-network/tracewalk/pkg/credentials"
	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/parser"
)

// panosDriver speaks the PAN-OS operational CLI. PAN-OS has no VRFs; its
// logical contexts are virtual routers, and the shared "global" context
// maps onto the virtual router named "default".
type panosDriver struct {
	dial DialFunc
}

func (d *panosDriver) Vendor() model.Vendor { return model.VendorPANOS }

func (d *panosDriver) Open(ctx context.Context, device *model.NetworkDevice, creds credentials.Credentials, timeout time.Duration) (Session, error) {
	t, err := d.dial(ctx, device, creds, timeout)
	if err != nil {
		return nil, err
	}
	return &panosSession{baseSession: baseSession{transport: t, device: device}}, nil
}

type panosSession struct {
	baseSession
}

func virtualRouter(logicalContext string) string {
	if logicalContext == model.DefaultContext {
		return "default"
	}
	return logicalContext
}

func (s *panosSession) GetRoute(ctx context.Context, destination, logicalContext string) (*model.RouteEntry, error) {
	cmd := fmt.Sprintf("show routing route destination %s virtual-router %s",
		destination, virtualRouter(logicalContext))
	raw, err := s.transport.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return parser.PANOS{}.ParseRouteEntry(raw, destination, logicalContext)
}

func (s *panosSession) ListContexts(ctx context.Context) ([]string, error) {
	raw, err := s.transport.Run(ctx, "show routing summary")
	if err != nil {
		return nil, err
	}
	names, err := parser.PANOS{}.ParseContexts(raw)
	if err != nil {
		return nil, err
	}
	// Surface the "default" virtual router under its shared name too.
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "default" {
			continue
		}
		out = append(out, n)
	}
	return ensureDefaultContext(out), nil
}
