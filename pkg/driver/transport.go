package driver

import (
	"context"
	"time"

	"github.com/tracewalk-network/tracewalk/pkg/credentials"
	"github.com/tracewalk-network/tracewalk/pkg/model"
)

// Transport is the raw command channel under a vendor session. The SSH
// implementation is the production one; tests substitute a scripted fake.
type Transport interface {
	// Run executes one CLI command and returns its output.
	Run(ctx context.Context, command string) (string, error)

	// Close releases the underlying connection. Idempotent.
	Close() error
}

// DialFunc establishes a transport to a device. Implementations classify
// failures as ErrConnectTimeout or ErrAuthFailed (wrapped in ConnectError)
// so the orchestrator can report them distinctly.
type DialFunc func(ctx context.Context, device *model.NetworkDevice, creds credentials.Credentials, timeout time.Duration) (Transport, error)
