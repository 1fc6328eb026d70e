package tortransport

import (
	"context"
	"crypto/x509"
	"os"

	"github.com/ooni/torhttp/internal/model"
	"github.com/ooni/torhttp/internal/tunnel"
	utls "gitlab.com/yawning/utls.git"
)

// DefaultPort is the default destination port.
const DefaultPort = 443

// DefaultMaxResponseSize is the default maximum response size.
const DefaultMaxResponseSize = 1 << 22

// Config contains the configuration for creating a [*Transport]. The
// zero value is valid and uses tor with the default settings.
type Config struct {
	// ClientHelloID is the OPTIONAL uTLS fingerprint. By default we use
	// utls.HelloGolang, which honours the "http/1.1" ALPN we request.
	ClientHelloID *utls.ClientHelloID

	// Logger is the OPTIONAL logger. By default we don't log.
	Logger model.Logger

	// MaxResponseSize is the OPTIONAL maximum number of bytes we are
	// willing to read. Zero means DefaultMaxResponseSize.
	MaxResponseSize int64

	// Port is the OPTIONAL destination port. Zero means DefaultPort.
	Port int

	// RootCAs is the OPTIONAL certificate pool. When nil we use the
	// system certificate pool.
	RootCAs *x509.CertPool

	// TorArgs contains OPTIONAL extra arguments for tor.
	TorArgs []string

	// TorBinary is the OPTIONAL path of the tor binary.
	TorBinary string

	// TunnelName is the OPTIONAL tunnel name. By default we use "tor".
	TunnelName string

	// testMkdirTemp allows to mock os.MkdirTemp.
	testMkdirTemp func(dir, pattern string) (string, error)

	// testTunnelStart allows to mock tunnel.Start.
	testTunnelStart func(ctx context.Context, config *tunnel.Config) (tunnel.Tunnel, tunnel.DebugInfo, error)
}

func (c *Config) clientHelloID() utls.ClientHelloID {
	if c.ClientHelloID != nil {
		return *c.ClientHelloID
	}
	return utls.HelloGolang
}

func (c *Config) maxResponseSize() int64 {
	if c.MaxResponseSize > 0 {
		return c.MaxResponseSize
	}
	return DefaultMaxResponseSize
}

func (c *Config) port() int {
	if c.Port > 0 {
		return c.Port
	}
	return DefaultPort
}

func (c *Config) tunnelName() string {
	if c.TunnelName != "" {
		return c.TunnelName
	}
	return "tor"
}

func (c *Config) mkdirTemp(dir, pattern string) (string, error) {
	if c.testMkdirTemp != nil {
		return c.testMkdirTemp(dir, pattern)
	}
	return os.MkdirTemp(dir, pattern)
}

func (c *Config) tunnelStart(
	ctx context.Context, config *tunnel.Config) (tunnel.Tunnel, tunnel.DebugInfo, error) {
	if c.testTunnelStart != nil {
		return c.testTunnelStart(ctx, config)
	}
	return tunnel.Start(ctx, config)
}
