package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ooni/torhttp/internal/httpwire"
	"github.com/ooni/torhttp/internal/tortransport"
)

// ErrInvalidSetting indicates that a setting has an invalid value.
var ErrInvalidSetting = errors.New("invalid setting")

// Tunnel contains the tor settings
type Tunnel struct {
	TorBinary string   `json:"tor_binary"`
	TorArgs   []string `json:"tor_args"`
}

// DirectoryCache tells where to find the directory cache
type DirectoryCache struct {
	TmpDir     string `json:"tmp_dir"`
	NodesFile  string `json:"nodes_file"`
	RelaysFile string `json:"relays_file"`
}

// Framing contains the HTTP framing settings
type Framing struct {
	LineTerminator string `json:"line_terminator"`
	MaxHeaders     int    `json:"max_headers"`
}

const (
	lineTerminatorLF   = "lf"
	lineTerminatorCRLF = "crlf"
)

func (f *Framing) setDefaults() {
	if f.LineTerminator == "" {
		f.LineTerminator = lineTerminatorLF
	}
	if f.MaxHeaders == 0 {
		f.MaxHeaders = httpwire.DefaultMaxHeaders
	}
}

func (f *Framing) validate() error {
	if f.LineTerminator != lineTerminatorLF && f.LineTerminator != lineTerminatorCRLF {
		return fmt.Errorf("%w: line_terminator: %q", ErrInvalidSetting, f.LineTerminator)
	}
	if f.MaxHeaders < 0 {
		return fmt.Errorf("%w: max_headers: %d", ErrInvalidSetting, f.MaxHeaders)
	}
	return nil
}

// EOL returns the line terminator to use when encoding.
func (f *Framing) EOL() string {
	if f.LineTerminator == lineTerminatorCRLF {
		return httpwire.CRLF
	}
	return httpwire.LF
}

// UseCRLF sets CRLF as the line terminator.
func (f *Framing) UseCRLF() {
	f.LineTerminator = lineTerminatorCRLF
}

// Transport contains the transport settings
type Transport struct {
	Port            int   `json:"port"`
	MaxResponseSize int64 `json:"max_response_size"`
	TimeoutSeconds  int64 `json:"timeout_seconds"`
	AllowBinary     bool  `json:"allow_binary"`
}

// DefaultTimeoutSeconds is the default timeout of a request.
const DefaultTimeoutSeconds = 300

func (t *Transport) setDefaults() {
	if t.Port == 0 {
		t.Port = tortransport.DefaultPort
	}
	if t.MaxResponseSize == 0 {
		t.MaxResponseSize = tortransport.DefaultMaxResponseSize
	}
	if t.TimeoutSeconds == 0 {
		t.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

func (t *Transport) validate() error {
	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("%w: port: %d", ErrInvalidSetting, t.Port)
	}
	if t.MaxResponseSize < 0 {
		return fmt.Errorf("%w: max_response_size: %d", ErrInvalidSetting, t.MaxResponseSize)
	}
	if t.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timeout_seconds: %d", ErrInvalidSetting, t.TimeoutSeconds)
	}
	return nil
}

// Timeout returns the request timeout.
func (t *Transport) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}
