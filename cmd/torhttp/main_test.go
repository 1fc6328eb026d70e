package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/ooni/torhttp/config"
	"github.com/ooni/torhttp/internal/model"
	"github.com/ooni/torhttp/internal/model/mocks"
	"github.com/ooni/torhttp/internal/torclient"
)

// closeableTransport is a mocked transport with a Close method.
type closeableTransport struct {
	*mocks.Transport
	closed bool
}

func (txp *closeableTransport) Close() error {
	txp.closed = true
	return nil
}

// exchange is what the mocked transport observed.
type exchange struct {
	host    string
	request string
	dc      model.DirectoryCache
}

// runCommand runs the command line with a transport returning response
// and returns what the transport observed and what we printed.
func runCommand(t *testing.T, response string, args ...string) (*exchange, string, error) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var (
		stdout bytes.Buffer
		seen   exchange
		txp    *closeableTransport
	)
	env := &environment{
		logger:     model.DiscardLogger,
		setVerbose: func() {},
		stdout:     &stdout,
		newTransport: func(cfg *config.Config, logger model.Logger) transport {
			txp = &closeableTransport{Transport: &mocks.Transport{
				MockTransmit: func(ctx context.Context, host string, request []byte, dc model.DirectoryCache) ([]byte, error) {
					seen = exchange{host: host, request: string(request), dc: dc}
					if response == "" {
						return nil, io.EOF
					}
					return []byte(response), nil
				},
			}}
			return txp
		},
	}
	root := newRootCommand(env)
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.Execute()
	if txp != nil && !txp.closed {
		t.Fatal("did not close the transport")
	}
	return &seen, stdout.String(), err
}

const okResponse = "HTTP/1.1 200 OK\nContent-Type: text/plain\n\nhello"

func TestGet(t *testing.T) {
	seen, out, err := runCommand(t, okResponse, "get", "https://example.org/index.html")
	if err != nil {
		t.Fatal(err)
	}
	expect := &exchange{
		host:    "example.org",
		request: "GET /index.html HTTP/1.1\nHost: example.org\nConnection: close\n\n",
	}
	if diff := cmp.Diff(expect, seen, cmp.AllowUnexported(exchange{})); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff("HTTP/1.1 200 OK\nContent-Type: text/plain\n\nhello", out); diff != "" {
		t.Fatal(diff)
	}
}

func TestPost(t *testing.T) {
	seen, _, err := runCommand(t, okResponse,
		"post", "--data", "hello", "--crlf", "-H", "X-Foo: bar",
		"https://example.org:8443/api?x=1")
	if err != nil {
		t.Fatal(err)
	}
	expect := "POST /api?x=1 HTTP/1.1\r\nHost: example.org:8443\r\nX-Foo: bar\r\n" +
		"Connection: close\r\nContent-Length: 5\r\n\r\nhello"
	if diff := cmp.Diff(expect, seen.request); diff != "" {
		t.Fatal(diff)
	}
	if seen.host != "example.org" {
		t.Fatal("the transport should only receive the host name", seen.host)
	}
}

func TestUserProvidedHeadersWin(t *testing.T) {
	seen, _, err := runCommand(t, okResponse,
		"--http10", "-H", "Connection: keep-alive", "get", "https://example.org/")
	if err != nil {
		t.Fatal(err)
	}
	expect := "GET / HTTP/1.0\nHost: example.org\nConnection: keep-alive\n\n"
	if diff := cmp.Diff(expect, seen.request); diff != "" {
		t.Fatal(diff)
	}

	t.Run("for the Host header", func(t *testing.T) {
		seen, _, err := runCommand(t, okResponse,
			"-H", "Host: other.example", "get", "https://example.org/")
		if err != nil {
			t.Fatal(err)
		}
		expect := "GET / HTTP/1.1\nHost: other.example\nConnection: close\n\n"
		if diff := cmp.Diff(expect, seen.request); diff != "" {
			t.Fatal(diff)
		}
		if seen.host != "example.org" {
			t.Fatal("unexpected transport host", seen.host)
		}
	})
}

func TestGetWithEmptyPath(t *testing.T) {
	seen, _, err := runCommand(t, okResponse, "get", "https://www.c4dt.org")
	if err != nil {
		t.Fatal(err)
	}
	expect := "GET / HTTP/1.1\nHost: www.c4dt.org\nConnection: close\n\n"
	if diff := cmp.Diff(expect, seen.request); diff != "" {
		t.Fatal(diff)
	}
}

func TestDirectoryCacheFlags(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "consensus.txt")
	if err := os.WriteFile(nodes, []byte("network-status-version 3 microdesc\n"), 0600); err != nil {
		t.Fatal(err)
	}
	seen, _, err := runCommand(t, okResponse,
		"--tmp-dir", dir, "--nodes", nodes, "get", "https://example.org/")
	if err != nil {
		t.Fatal(err)
	}
	expect := model.DirectoryCache{
		TmpDir: dir,
		Nodes:  "network-status-version 3 microdesc\n",
	}
	if diff := cmp.Diff(expect, seen.dc); diff != "" {
		t.Fatal(diff)
	}
}

func TestErrors(t *testing.T) {
	t.Run("invalid header flag", func(t *testing.T) {
		_, _, err := runCommand(t, okResponse, "-H", "antani", "get", "https://example.org/")
		if !errors.Is(err, ErrInvalidHeaderFlag) {
			t.Fatal("not the error we expected", err)
		}
	})

	t.Run("nonexistent config file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.json")
		_, _, err := runCommand(t, okResponse, "--config", configFile, "get", "https://example.org/")
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatal("not the error we expected", err)
		}
	})

	t.Run("nonexistent relays file", func(t *testing.T) {
		relays := filepath.Join(t.TempDir(), "relays.txt")
		_, _, err := runCommand(t, okResponse, "--relays", relays, "get", "https://example.org/")
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatal("not the error we expected", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		_, out, err := runCommand(t, "", "get", "https://example.org/")
		if !errors.Is(err, torclient.ErrTransport) || !errors.Is(err, io.EOF) {
			t.Fatal("not the error we expected", err)
		}
		if out != "" {
			t.Fatal("printed something on failure", out)
		}
	})

	t.Run("missing URL", func(t *testing.T) {
		_, _, err := runCommand(t, okResponse, "get")
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestVerbose(t *testing.T) {
	var verbose bool
	env := &environment{
		logger:     model.DiscardLogger,
		setVerbose: func() { verbose = true },
		stdout:     io.Discard,
		newTransport: func(cfg *config.Config, logger model.Logger) transport {
			return &closeableTransport{Transport: &mocks.Transport{
				MockTransmit: func(ctx context.Context, host string, request []byte, dc model.DirectoryCache) ([]byte, error) {
					return []byte(okResponse), nil
				},
			}}
		},
	}
	root := newRootCommand(env)
	root.SetArgs([]string{"-v", "get", "https://example.org/"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !verbose {
		t.Fatal("did not enable verbose logging")
	}
}

func TestLogHandler(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	var buf bytes.Buffer
	logger := &log.Logger{Level: log.DebugLevel, Handler: newLogHandler(&buf)}
	logger.WithField("host", "example.org").Infof("tunnel ready in %s", "1s")
	line := buf.String()
	if !strings.Contains(line, "<info> tunnel ready in 1s: ") {
		t.Fatal("unexpected log line", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatal("missing newline", line)
	}
}

func TestPrintResponseColors(t *testing.T) {
	for code, expect := range map[int]*color.Color{
		200: statusOK,
		301: statusRedirect,
		404: statusError,
		503: statusError,
	} {
		if statusColor(code) != expect {
			t.Fatal("unexpected color for", code)
		}
	}
}
