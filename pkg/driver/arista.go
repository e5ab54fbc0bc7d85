package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/tracewalk-network/tracewalk/pkg/credentials"
	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/parser"
)

// aristaDriver speaks EOS.
type aristaDriver struct {
	dial DialFunc
}

func (d *aristaDriver) Vendor() model.Vendor { return model.VendorAristaEOS }

func (d *aristaDriver) Open(ctx context.Context, device *model.NetworkDevice, creds credentials.Credentials, timeout time.Duration) (Session, error) {
	t, err := d.dial(ctx, device, creds, timeout)
	if err != nil {
		return nil, err
	}
	return &aristaSession{baseSession: baseSession{transport: t, device: device}}, nil
}

type aristaSession struct {
	baseSession
}

func (s *aristaSession) GetRoute(ctx context.Context, destination, logicalContext string) (*model.RouteEntry, error) {
	cmd := "show ip route " + destination
	if logicalContext != model.DefaultContext {
		cmd = fmt.Sprintf("show ip route vrf %s %s", logicalContext, destination)
	}
	raw, err := s.transport.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return parser.AristaEOS{}.ParseRouteEntry(raw, destination, logicalContext)
}

func (s *aristaSession) ListContexts(ctx context.Context) ([]string, error) {
	raw, err := s.transport.Run(ctx, "show vrf")
	if err != nil {
		return nil, err
	}
	names, err := parser.AristaEOS{}.ParseContexts(raw)
	if err != nil {
		return nil, err
	}
	// EOS names its global table "default"; the shared vocabulary calls
	// it "global" and keeps the listing otherwise intact.
	return ensureDefaultContext(names), nil
}
