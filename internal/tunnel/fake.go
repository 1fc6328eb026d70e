package tunnel

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/armon/go-socks5"
)

// fakeTunnel is a tunnel whose SOCKS5 proxy connects directly.
type fakeTunnel struct {
	addr          net.Addr
	bootstrapTime time.Duration
	listener      net.Listener
	once          sync.Once
}

// BootstrapTime implements Tunnel.BootstrapTime.
func (t *fakeTunnel) BootstrapTime() time.Duration {
	return t.bootstrapTime
}

// Stop implements Tunnel.Stop.
func (t *fakeTunnel) Stop() {
	// closing the listener causes server.Serve to return
	t.once.Do(func() { _ = t.listener.Close() })
}

// SOCKS5ProxyURL implements Tunnel.SOCKS5ProxyURL.
func (t *fakeTunnel) SOCKS5ProxyURL() *url.URL {
	return &url.URL{
		Scheme: "socks5",
		Host:   t.addr.String(),
	}
}

// fakeStart behaves like torStart as far as the context and the
// tunnel dir are concerned and then runs a local SOCKS5 server.
func fakeStart(ctx context.Context, config *Config) (Tunnel, DebugInfo, error) {
	debugInfo := DebugInfo{
		LogFilePath: "",
		Name:        "fake",
		Version:     "",
	}
	select {
	case <-ctx.Done():
		return nil, debugInfo, ctx.Err()
	default:
	}
	if config.TunnelDir == "" {
		return nil, debugInfo, ErrEmptyTunnelDir
	}
	if err := config.mkdirAll(StateDir(config.TunnelDir), 0700); err != nil {
		return nil, debugInfo, err
	}
	server, err := config.socks5New(&socks5.Config{})
	if err != nil {
		return nil, debugInfo, err
	}
	start := time.Now()
	listener, err := config.netListen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, debugInfo, err
	}
	bootstrapTime := time.Since(start)
	go server.Serve(listener)
	config.logger().Infof("tunnel: fake: socks5 proxy at %s", listener.Addr().String())
	return &fakeTunnel{
		addr:          listener.Addr(),
		bootstrapTime: bootstrapTime,
		listener:      listener,
	}, debugInfo, nil
}
