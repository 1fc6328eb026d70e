package tortransport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/ooni/torhttp/internal/dircache"
	"github.com/ooni/torhttp/internal/model"
	"github.com/ooni/torhttp/internal/runtimex"
	"github.com/ooni/torhttp/internal/tunnel"
	utls "gitlab.com/yawning/utls.git"
	"golang.org/x/net/proxy"
)

// ErrProxyUnsupportedScheme indicates we don't support the proxy scheme.
var ErrProxyUnsupportedScheme = errors.New("tortransport: unsupported proxy scheme")

// ErrResponseTooLarge indicates that the response exceeds the maximum size.
var ErrResponseTooLarge = errors.New("tortransport: response too large")

// ErrUnexpectedALPN indicates that the server negotiated a protocol
// other than HTTP/1.1.
var ErrUnexpectedALPN = errors.New("tortransport: unexpected ALPN")

// ErrClosed indicates that the transport has been closed.
var ErrClosed = errors.New("tortransport: transport closed")

// Transport is a [model.Transport] sending requests over tor.
type Transport struct {
	closed    bool
	config    Config
	logger    model.Logger
	mu        sync.Mutex
	ownTmpDir string
	tun       tunnel.Tunnel
}

var _ model.Transport = &Transport{}

// New creates a new [*Transport]. The config is copied.
func New(config *Config) *Transport {
	return &Transport{
		config: *config,
		logger: model.ValidLoggerOrDefault(config.Logger),
	}
}

// Transmit implements model.Transport. The directory cache of the first
// call determines the tunnel data directory: later calls reuse the same
// tunnel and ignore their directory cache.
func (t *Transport) Transmit(
	ctx context.Context, host string, request []byte, dc model.DirectoryCache) ([]byte, error) {
	proxyURL, err := t.maybeStartTunnel(ctx, dc)
	if err != nil {
		return nil, err
	}
	address := net.JoinHostPort(host, strconv.Itoa(t.config.port()))
	conn, err := t.dial(ctx, proxyURL, address)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// make sure cancelling the context interrupts any pending I/O
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	tlsConn := utls.UClient(conn, &utls.Config{
		NextProtos: []string{"http/1.1"},
		RootCAs:    t.config.RootCAs,
		ServerName: host,
	}, t.config.clientHelloID())
	if err := tlsConn.Handshake(); err != nil {
		return nil, maybeContextError(ctx, fmt.Errorf("tortransport: tls handshake: %w", err))
	}
	state := tlsConn.ConnectionState()
	if p := state.NegotiatedProtocol; p != "" && p != "http/1.1" {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedALPN, p)
	}

	if _, err := tlsConn.Write(request); err != nil {
		return nil, maybeContextError(ctx, fmt.Errorf("tortransport: write: %w", err))
	}
	return t.readResponse(ctx, tlsConn)
}

func (t *Transport) readResponse(ctx context.Context, r io.Reader) ([]byte, error) {
	maxSize := t.config.maxResponseSize()
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil && !(errors.Is(err, io.ErrUnexpectedEOF) && len(data) > 0) {
		return nil, maybeContextError(ctx, fmt.Errorf("tortransport: read: %w", err))
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxSize)
	}
	return data, nil
}

// maybeContextError returns the context error when the context is done.
func maybeContextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (t *Transport) dial(ctx context.Context, proxyURL *url.URL, address string) (net.Conn, error) {
	if proxyURL.Scheme != "socks5" {
		return nil, fmt.Errorf("%w: %s", ErrProxyUnsupportedScheme, proxyURL.Scheme)
	}
	// the code at proxy/socks5.go never fails; see https://git.io/JfJ4g
	child, _ := proxy.SOCKS5("tcp", proxyURL.Host, nil, &net.Dialer{})
	cd, ok := child.(proxy.ContextDialer)
	runtimex.Assert(ok, "proxy.SOCKS5 did not return a proxy.ContextDialer")
	t.logger.Debugf("tortransport: dial %s using %s...", address, proxyURL)
	conn, err := cd.DialContext(ctx, "tcp", address)
	t.logger.Debugf("tortransport: dial %s using %s... %s", address, proxyURL, model.ErrorToStringOrOK(err))
	return conn, err
}

// maybeStartTunnel starts the tunnel unless it is already running
// and returns the SOCKS5 proxy URL.
func (t *Transport) maybeStartTunnel(ctx context.Context, dc model.DirectoryCache) (*url.URL, error) {
	defer t.mu.Unlock()
	t.mu.Lock()
	if t.closed {
		return nil, ErrClosed
	}
	if t.tun != nil {
		return t.tun.SOCKS5ProxyURL(), nil
	}
	if dc.TmpDir == "" && t.ownTmpDir == "" {
		dir, err := t.config.mkdirTemp("", "torhttp")
		if err != nil {
			return nil, err
		}
		t.ownTmpDir = dir
	}
	if dc.TmpDir == "" {
		dc.TmpDir = t.ownTmpDir
	}
	if _, err := dircache.Seed(dc); err != nil {
		return nil, err
	}
	tun, debugInfo, err := t.config.tunnelStart(ctx, &tunnel.Config{
		Name:      t.config.tunnelName(),
		TunnelDir: dc.TmpDir,
		Logger:    t.logger,
		TorArgs:   t.config.TorArgs,
		TorBinary: t.config.TorBinary,
	})
	if err != nil {
		if debugInfo.LogFilePath != "" {
			t.logger.Warnf("tortransport: %s failed; see %s", debugInfo.Name, debugInfo.LogFilePath)
		}
		return nil, err
	}
	t.logger.Infof("tortransport: %s tunnel ready in %s", debugInfo.Name, tun.BootstrapTime())
	t.tun = tun
	return tun.SOCKS5ProxyURL(), nil
}

// Close stops the tunnel and removes the temporary directory we
// created, if any. Transmit fails with ErrClosed after Close.
func (t *Transport) Close() error {
	defer t.mu.Unlock()
	t.mu.Lock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.tun != nil {
		t.tun.Stop()
		t.tun = nil
	}
	if t.ownTmpDir != "" {
		return os.RemoveAll(t.ownTmpDir)
	}
	return nil
}
