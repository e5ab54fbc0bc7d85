package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/tracewalk-network/tracewalk/pkg/credentials"
	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/parser"
)

// ciscoDriver speaks the IOS / IOS-XE / NX-OS command family.
type ciscoDriver struct {
	dial DialFunc
}

func (d *ciscoDriver) Vendor() model.Vendor { return model.VendorCiscoIOS }

func (d *ciscoDriver) Open(ctx context.Context, device *model.NetworkDevice, creds credentials.Credentials, timeout time.Duration) (Session, error) {
	t, err := d.dial(ctx, device, creds, timeout)
	if err != nil {
		return nil, err
	}
	return &ciscoSession{baseSession: baseSession{transport: t, device: device}}, nil
}

type ciscoSession struct {
	baseSession
}

func (s *ciscoSession) GetRoute(ctx context.Context, destination, logicalContext string) (*model.RouteEntry, error) {
	cmd := "show ip route " + destination
	if logicalContext != model.DefaultContext {
		cmd = fmt.Sprintf("show ip route vrf %s %s", logicalContext, destination)
	}
	raw, err := s.transport.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return parser.CiscoIOS{}.ParseRouteEntry(raw, destination, logicalContext)
}

func (s *ciscoSession) ListContexts(ctx context.Context) ([]string, error) {
	raw, err := s.transport.Run(ctx, "show vrf")
	if err != nil {
		return nil, err
	}
	names, err := parser.CiscoIOS{}.ParseContexts(raw)
	if err != nil {
		return nil, err
	}
	// The global table is not listed by "show vrf".
	return ensureDefaultContext(names), nil
}
