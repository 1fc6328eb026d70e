package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ooni/torhttp/internal/httpwire"
)

func TestParseConfig(t *testing.T) {
	config, err := ReadConfig("testdata/valid-config.json")
	if err != nil {
		t.Fatal(err)
	}
	expect := &Config{
		Comment: "torhttp configuration file",
		Tunnel: Tunnel{
			TorArgs: []string{"UseEntryGuards", "0"},
		},
		DirectoryCache: DirectoryCache{
			TmpDir:     "/tmp/torhttp",
			NodesFile:  "consensus.txt",
			RelaysFile: "microdescriptors.txt",
		},
		Framing: Framing{
			LineTerminator: "crlf",
			MaxHeaders:     16,
		},
		Transport: Transport{
			Port:            443,
			MaxResponseSize: 1 << 22,
			TimeoutSeconds:  60,
		},
	}
	if diff := cmp.Diff(expect, config, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Fatal(diff)
	}
	if config.Path() != "testdata/valid-config.json" {
		t.Fatal("unexpected path", config.Path())
	}
	if config.Framing.EOL() != httpwire.CRLF {
		t.Fatal("unexpected line terminator")
	}
	if config.Transport.Timeout() != time.Minute {
		t.Fatal("unexpected timeout")
	}
}

func TestReadConfigNonexistentFile(t *testing.T) {
	config, err := ReadConfig(filepath.Join(t.TempDir(), "nonexistent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatal("not the error we expected", err)
	}
	if config != nil {
		t.Fatal("expected nil config")
	}
}

func TestParseConfigErrors(t *testing.T) {
	type testcase struct {
		name         string
		input        string
		expectPrefix string
		expectErr    error
	}

	testcases := []testcase{{
		name:         "invalid hujson",
		input:        "{",
		expectPrefix: "parsing json: ",
	}, {
		name:         "wrong type",
		input:        `{"transport": {"port": "443"}}`,
		expectPrefix: "parsing json: ",
	}, {
		name:         "invalid line terminator",
		input:        `{"framing": {"line_terminator": "cr"}}`,
		expectPrefix: "validating: ",
		expectErr:    ErrInvalidSetting,
	}, {
		name:         "negative max headers",
		input:        `{"framing": {"max_headers": -1}}`,
		expectPrefix: "validating: ",
		expectErr:    ErrInvalidSetting,
	}, {
		name:         "port out of range",
		input:        `{"transport": {"port": 65536}}`,
		expectPrefix: "validating: ",
		expectErr:    ErrInvalidSetting,
	}, {
		name:         "negative max response size",
		input:        `{"transport": {"max_response_size": -1}}`,
		expectPrefix: "validating: ",
		expectErr:    ErrInvalidSetting,
	}, {
		name:         "negative timeout",
		input:        `{"transport": {"timeout_seconds": -1}}`,
		expectPrefix: "validating: ",
		expectErr:    ErrInvalidSetting,
	}}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := ParseConfig([]byte(tc.input))
			if err == nil || !strings.HasPrefix(err.Error(), tc.expectPrefix) {
				t.Fatal("not the error we expected", err)
			}
			if tc.expectErr != nil && !errors.Is(err, tc.expectErr) {
				t.Fatal("not the error we expected", err)
			}
			if config != nil {
				t.Fatal("expected nil config")
			}
		})
	}
}

func TestNew(t *testing.T) {
	config := New()
	if config.Framing.EOL() != httpwire.LF {
		t.Fatal("LF should be the default")
	}
	if config.Framing.MaxHeaders != httpwire.DefaultMaxHeaders {
		t.Fatal("unexpected max headers")
	}
	if err := config.Validate(); err != nil {
		t.Fatal(err)
	}
	config.Framing.UseCRLF()
	if config.Framing.EOL() != httpwire.CRLF {
		t.Fatal("UseCRLF did not work")
	}
}
