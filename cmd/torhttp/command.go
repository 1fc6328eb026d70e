package main

//
// Command line interface
//

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/ooni/torhttp/config"
	"github.com/ooni/torhttp/internal/dircache"
	"github.com/ooni/torhttp/internal/model"
	"github.com/ooni/torhttp/internal/runtimex"
	"github.com/ooni/torhttp/internal/torclient"
	"github.com/ooni/torhttp/internal/tortransport"
	"github.com/spf13/cobra"
)

// transport is a closeable model.Transport.
type transport interface {
	model.Transport
	Close() error
}

// environment contains the dependencies of the commands.
type environment struct {
	// logger is the MANDATORY logger.
	logger model.Logger

	// setVerbose is the MANDATORY func enabling debug logging.
	setVerbose func()

	// stdout is the MANDATORY writer where we print the response.
	stdout io.Writer

	// newTransport is the MANDATORY transport factory.
	newTransport func(cfg *config.Config, logger model.Logger) transport
}

// newTorTransport creates the transport used by the main binary.
func newTorTransport(cfg *config.Config, logger model.Logger) transport {
	return tortransport.New(&tortransport.Config{
		Logger:          logger,
		MaxResponseSize: cfg.Transport.MaxResponseSize,
		Port:            cfg.Transport.Port,
		TorArgs:         cfg.Tunnel.TorArgs,
		TorBinary:       cfg.Tunnel.TorBinary,
	})
}

// options contains the command line options.
type options struct {
	configFile string
	crlf       bool
	data       string
	headers    []string
	http10     bool
	nodesFile  string
	relaysFile string
	tmpDir     string
	torArgs    []string
	torBinary  string
	verbose    bool
}

func newRootCommand(env *environment) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "torhttp",
		Short:        "Send a single HTTP request over tor",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Read the configuration from the given file")
	flags.BoolVar(&opts.crlf, "crlf", false, "Terminate request lines with CRLF rather than LF")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "Add the given \"Name: Value\" header")
	flags.BoolVar(&opts.http10, "http10", false, "Use HTTP/1.0 rather than HTTP/1.1")
	flags.StringVar(&opts.nodesFile, "nodes", "", "Read the consensus from the given file")
	flags.StringVar(&opts.relaysFile, "relays", "", "Read the microdescriptors from the given file")
	flags.StringVar(&opts.tmpDir, "tmp-dir", "", "Use the given directory for tor's state")
	flags.StringArrayVar(&opts.torArgs, "tor-arg", nil, "Pass the given extra argument to tor")
	flags.StringVar(&opts.torBinary, "tor-binary", "", "Use the given tor binary")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	for _, name := range []string{"config", "nodes", "relays"} {
		runtimex.PanicOnError(root.MarkPersistentFlagFilename(name), "MarkPersistentFlagFilename")
	}

	root.AddCommand(&cobra.Command{
		Use:   "get URL",
		Short: "Send a GET request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), env, opts, "GET", args[0])
		},
	})

	post := &cobra.Command{
		Use:   "post URL",
		Short: "Send a POST request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), env, opts, "POST", args[0])
		},
	}
	post.Flags().StringVar(&opts.data, "data", "", "Send the given string as the request body")
	root.AddCommand(post)

	return root
}

// loadConfig reads the config file, if any, and applies the command
// line options on top of it.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.New()
	if opts.configFile != "" {
		var err error
		if cfg, err = config.ReadConfig(opts.configFile); err != nil {
			return nil, err
		}
	}
	if opts.crlf {
		cfg.Framing.UseCRLF()
	}
	if opts.nodesFile != "" {
		cfg.DirectoryCache.NodesFile = opts.nodesFile
	}
	if opts.relaysFile != "" {
		cfg.DirectoryCache.RelaysFile = opts.relaysFile
	}
	if opts.tmpDir != "" {
		cfg.DirectoryCache.TmpDir = opts.tmpDir
	}
	cfg.Tunnel.TorArgs = append(cfg.Tunnel.TorArgs, opts.torArgs...)
	if opts.torBinary != "" {
		cfg.Tunnel.TorBinary = opts.torBinary
	}
	return cfg, nil
}

func run(ctx context.Context, env *environment, opts *options, method, URL string) error {
	if opts.verbose {
		env.setVerbose()
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	req, err := newRequest(method, URL, opts)
	if err != nil {
		return err
	}
	dc, err := dircache.Load(cfg.DirectoryCache.TmpDir,
		cfg.DirectoryCache.NodesFile, cfg.DirectoryCache.RelaysFile)
	if err != nil {
		return err
	}

	txp := env.newTransport(cfg, env.logger)
	defer txp.Close()
	client := torclient.New(&torclient.Config{
		DirectoryCache: dc,
		Transport:      txp,
		Logger:         env.logger,
		LineTerminator: cfg.Framing.EOL(),
		MaxHeaders:     cfg.Framing.MaxHeaders,
		AllowBinary:    cfg.Transport.AllowBinary,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.Transport.Timeout())
	defer cancel()
	resp, err := client.Send(ctx, req)
	if err != nil {
		return err
	}
	printResponse(env.stdout, resp)
	return nil
}

// ErrInvalidHeaderFlag indicates that a -H value is not "Name: Value".
var ErrInvalidHeaderFlag = errors.New("torhttp: invalid header")

// newRequest builds the request to send. Unless the user provided them, we
// add the Host header first, "Connection: close" and, for POST, the
// Content-Length header. Tor streams are one-shot and the transport reads
// the response until the server closes.
//
// The Host header carries the URL port, if any, but the transport only
// receives the host name and connects to its configured port.
func newRequest(method, URL string, opts *options) (*model.Request, error) {
	parsed, err := url.Parse(URL)
	if err != nil {
		return nil, err
	}
	req := model.NewRequest(method, URL)
	if opts.http10 {
		req.Version = model.HTTP10
	}
	for _, header := range opts.headers {
		name, value, found := strings.Cut(header, ":")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeaderFlag, header)
		}
		req.Header.Add(name, strings.TrimSpace(value))
	}
	if req.Header.Get("Host") == "" {
		req.Header = append(model.Header{{Name: "Host", Value: parsed.Host}}, req.Header...)
	}
	if req.Header.Get("Connection") == "" {
		req.Header.Add("Connection", "close")
	}
	if method == "POST" {
		req.Body = []byte(opts.data)
		if req.Header.Get("Content-Length") == "" {
			req.Header.Add("Content-Length", strconv.Itoa(len(req.Body)))
		}
	}
	return req, nil
}
