package tunnel

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cretz/bine/tor"
)

// torProcess is a running tor process.
type torProcess interface {
	Close() error
}

// torTunnel is the tor tunnel.
type torTunnel struct {
	bootstrapTime time.Duration
	instance      torProcess
	proxy         *url.URL
}

// BootstrapTime implements Tunnel.BootstrapTime.
func (tt *torTunnel) BootstrapTime() time.Duration {
	return tt.bootstrapTime
}

// SOCKS5ProxyURL implements Tunnel.SOCKS5ProxyURL.
func (tt *torTunnel) SOCKS5ProxyURL() *url.URL {
	return tt.proxy
}

// Stop implements Tunnel.Stop.
func (tt *torTunnel) Stop() {
	_ = tt.instance.Close()
}

// ErrTorUnableToGetSOCKSProxyAddress indicates that we could not
// obtain the address of the SOCKS5 proxy from the control port.
var ErrTorUnableToGetSOCKSProxyAddress = errors.New(
	"tunnel: tor: unable to get socks proxy address")

// ErrTorReturnedUnsupportedProxy indicates that tor returned a proxy
// address we cannot use (e.g., a unix domain socket).
var ErrTorReturnedUnsupportedProxy = errors.New(
	"tunnel: tor: returned unsupported proxy")

// StateDir returns the tor data directory inside tunnelDir. Tor reads
// its cached consensus and microdescriptors from there.
func StateDir(tunnelDir string) string {
	return filepath.Join(tunnelDir, "tor")
}

// torStart starts the tor tunnel.
func torStart(ctx context.Context, config *Config) (Tunnel, DebugInfo, error) {
	debugInfo := DebugInfo{
		LogFilePath: "",
		Name:        "tor",
		Version:     "",
	}
	select {
	case <-ctx.Done():
		return nil, debugInfo, ctx.Err() // allows to write unit tests using this code
	default:
	}
	if config.TunnelDir == "" {
		return nil, debugInfo, ErrEmptyTunnelDir
	}
	stateDir := StateDir(config.TunnelDir)
	logfile := filepath.Join(stateDir, "tor.log")
	debugInfo.LogFilePath = logfile
	maybeCleanupTunnelDir(stateDir, logfile)

	extraArgs := append([]string{}, config.TorArgs...)
	extraArgs = append(extraArgs, "Log", "notice stderr")
	extraArgs = append(extraArgs, "Log", "notice file "+logfile)
	torStartConf, err := getTorStartConf(config, stateDir, extraArgs)
	if err != nil {
		return nil, debugInfo, err
	}
	instance, err := config.torStart(ctx, torStartConf)
	if err != nil {
		return nil, debugInfo, err
	}
	instance.StopProcessOnClose = true

	start := time.Now()
	pi, err := config.torProtocolInfo(instance)
	if err != nil {
		instance.Close()
		return nil, debugInfo, err
	}
	debugInfo.Version = pi.TorVersion
	config.logger().Infof("tunnel: tor: version %s; bootstrapping...", pi.TorVersion)
	if err := config.torEnableNetwork(ctx, instance, true); err != nil {
		instance.Close()
		return nil, debugInfo, err
	}
	stop := time.Now()

	// Adapted from <https://git.io/Jfc7N>
	info, err := config.torGetInfo(instance.Control, "net/listeners/socks")
	if err != nil {
		instance.Close()
		return nil, debugInfo, err
	}
	if len(info) != 1 || info[0].Key != "net/listeners/socks" {
		instance.Close()
		return nil, debugInfo, ErrTorUnableToGetSOCKSProxyAddress
	}
	proxyAddress, good := firstListener(info[0].Val)
	if !good {
		instance.Close()
		return nil, debugInfo, ErrTorUnableToGetSOCKSProxyAddress
	}
	if strings.HasPrefix(proxyAddress, "unix:") {
		instance.Close()
		return nil, debugInfo, ErrTorReturnedUnsupportedProxy
	}
	bootstrapTime := stop.Sub(start)
	config.logger().Infof("tunnel: tor: bootstrapped in %s; socks5 proxy at %s", bootstrapTime, proxyAddress)
	return &torTunnel{
		bootstrapTime: bootstrapTime,
		instance:      instance,
		proxy:         &url.URL{Scheme: "socks5", Host: proxyAddress},
	}, debugInfo, nil
}

// firstListener returns the first address in the space separated and
// possibly quoted list of listeners returned by the control port.
func firstListener(value string) (string, bool) {
	fields := strings.Fields(value)
	if len(fields) < 1 {
		return "", false
	}
	address := strings.Trim(fields[0], `"`)
	return address, address != ""
}

// getTorStartConf returns the tor.StartConf for running the tor binary.
func getTorStartConf(config *Config, dataDir string, extraArgs []string) (*tor.StartConf, error) {
	exePath, err := config.torBinary()
	if err != nil {
		return nil, err
	}
	config.logger().Infof("tunnel: tor: exec binary: %s", exePath)
	return &tor.StartConf{
		ExePath:   exePath,
		DataDir:   dataDir,
		ExtraArgs: extraArgs,
		NoHush:    true,
	}, nil
}

// maybeCleanupTunnelDir removes the files that a previous tor run left
// behind and that would confuse tor. We keep everything else, including
// the cached consensus and microdescriptors.
func maybeCleanupTunnelDir(dir, logfile string) {
	_ = os.Remove(logfile)
	removeWithGlob(filepath.Join(dir, "torrc-*"))
	removeWithGlob(filepath.Join(dir, "control-port-*"))
}

func removeWithGlob(pattern string) {
	files, _ := filepath.Glob(pattern)
	for _, file := range files {
		_ = os.Remove(file)
	}
}
