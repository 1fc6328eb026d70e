// Package mocks contains mocks for tunnel.
package mocks

import (
	"net/url"
	"time"

	"github.com/ooni/torhttp/internal/tunnel"
)

// Tunnel allows mocking a tunnel.
type Tunnel struct {
	MockBootstrapTime  func() time.Duration
	MockSOCKS5ProxyURL func() *url.URL
	MockStop           func()
}

var _ tunnel.Tunnel = &Tunnel{}

// BootstrapTime calls MockBootstrapTime.
func (t *Tunnel) BootstrapTime() time.Duration {
	return t.MockBootstrapTime()
}

// SOCKS5ProxyURL calls MockSOCKS5ProxyURL.
func (t *Tunnel) SOCKS5ProxyURL() *url.URL {
	return t.MockSOCKS5ProxyURL()
}

// Stop calls MockStop.
func (t *Tunnel) Stop() {
	t.MockStop()
}
