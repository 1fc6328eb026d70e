// Package tunnel starts the tor instance we use to reach HTTP servers
// anonymously.
//
// Fill a Config and call Start to obtain a Tunnel. The tunnel exposes a
// SOCKS5 proxy on the loopback interface: dial through it to open a
// stream over a tor circuit. Call Stop when you are done.
//
// For the "tor" tunnel, we use the tor binary set in Config.TorBinary,
// or the one in the TORHTTP_TOR_BINARY environment variable, or we
// search for "tor" in the PATH, in this order.
//
// The "fake" tunnel exposes a SOCKS5 proxy connecting directly to the
// destination. Use it in tests only: it provides no anonymity.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Tunnel is a running tunnel.
type Tunnel interface {
	// BootstrapTime returns the time it took to bootstrap.
	BootstrapTime() time.Duration

	// SOCKS5ProxyURL returns the SOCKS5 proxy URL.
	SOCKS5ProxyURL() *url.URL

	// Stop stops the tunnel. You should not attempt to
	// use any other tunnel method after Stop.
	Stop()
}

// ErrEmptyTunnelDir indicates that config.TunnelDir is empty.
var ErrEmptyTunnelDir = errors.New("TunnelDir is empty")

// ErrUnsupportedTunnelName indicates that the given tunnel name
// is not supported by this package.
var ErrUnsupportedTunnelName = errors.New("unsupported tunnel name")

// DebugInfo contains information useful to debug issues
// when starting up a given tunnel fails.
type DebugInfo struct {
	// LogFilePath is the path to the log file, which MAY
	// be empty in case we don't have a log file.
	LogFilePath string

	// Name is the name of the tunnel and will always
	// be properly set by the code.
	Name string

	// Version is the tunnel version. This field MAY be
	// empty if we don't know the version.
	Version string
}

// Start starts a new tunnel by name. We support the "tor" and
// the "fake" tunnels.
//
// The return value is a triple:
//
// 1. a valid Tunnel on success, nil on failure;
//
// 2. debugging information (both on success and failure);
//
// 3. nil on success, an error on failure.
func Start(ctx context.Context, config *Config) (Tunnel, DebugInfo, error) {
	switch config.Name {
	case "fake":
		return fakeStart(ctx, config)
	case "tor":
		return torStart(ctx, config)
	default:
		di := DebugInfo{}
		return nil, di, fmt.Errorf("%w: %s", ErrUnsupportedTunnelName, config.Name)
	}
}
