package driver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/tracewalk-network/tracewalk/pkg/credentials"
	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

const sshPort = "22"

// sshTransport runs CLI commands over SSH, one exec session per command
// (stateless, no PTY). Network devices accept this for show commands.
type sshTransport struct {
	client    *ssh.Client
	closeOnce sync.Once
	closeErr  error
}

// DialSSH opens an SSH connection to the device's management IP with
// password authentication. Host keys are not verified — management access
// is assumed to traverse a trusted network, matching the posture of the
// tooling this replaces.
func DialSSH(ctx context.Context, device *model.NetworkDevice, creds credentials.Credentials, timeout time.Duration) (Transport, error) {
	config := &ssh.ClientConfig{
		User: creds.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(creds.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(device.ManagementIP, sshPort)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, classifyDialError(device, addr, err)
	}
	return &sshTransport{client: client}, nil
}

// classifyDialError maps SSH dial failures onto the trace error taxonomy.
func classifyDialError(device *model.NetworkDevice, addr string, err error) error {
	reason := err
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		reason = fmt.Errorf("%w after dial to %s", util.ErrConnectTimeout, addr)
	} else if strings.Contains(err.Error(), "unable to authenticate") ||
		strings.Contains(err.Error(), "no supported methods remain") {
		reason = fmt.Errorf("%w for user on %s", util.ErrAuthFailed, addr)
	}
	return &util.ConnectError{Device: device.Hostname, Addr: addr, Reason: reason}
}

// Run executes a command in a fresh exec session. The context bounds the
// wait: on expiry Run returns the context error and the session is torn
// down with the transport, though the in-flight exec itself cannot be
// interrupted mid-command.
func (t *sshTransport) Run(ctx context.Context, command string) (string, error) {
	session, err := t.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := session.CombinedOutput(command)
		done <- result{output, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return string(res.output), fmt.Errorf("SSH exec '%s': %w", command, res.err)
		}
		return string(res.output), nil
	}
}

// Close closes the SSH connection. Safe to call multiple times.
func (t *sshTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.client.Close()
	})
	return t.closeErr
}
