package driver

import (
	"sync"

	"github.com/tracewalk-network/tracewalk/pkg/model"
)

// baseSession carries the transport and idempotent close shared by every
// vendor session.
type baseSession struct {
	transport Transport
	device    *model.NetworkDevice
	closeOnce sync.Once
	closeErr  error
}

func (s *baseSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.transport.Close()
	})
	return s.closeErr
}
