// csentry sends a single message, with optional breadcrumbs and tags, to a
// Sentry-compatible store endpoint and prints the event id the server
// assigned. It is meant for shell scripts and cron jobs that want to report
// failures without linking a client library.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	cxdbclient "github.com/strongdm/ai-cxdb/clients/go"

	"github.com/strongdm/csentry-go/pkg/csentry"
	"github.com/strongdm/csentry-go/pkg/csentry/transports/cxdb"
	"github.com/strongdm/csentry-go/pkg/csentry/transports/multi"
	"github.com/strongdm/csentry-go/pkg/csentry/transports/stderr"
)

// errNotAcknowledged is returned when no transport reported an event id.
var errNotAcknowledged = errors.New("event was not acknowledged")

func main() {
	if err := run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, getenv func(string) string, stdout, errOut io.Writer) error {
	var (
		configPath  string
		dsn         string
		level       string
		loggerName  string
		tags        []string
		breadcrumbs []string
		contextFile string
		sampleRate  float64
		timeout     string
		echo        bool
		cxdbAddress string
		scrub       bool
		verbose     bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("csentry", pflag.ContinueOnError)
	flagSet.SetOutput(errOut)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config file")
	flagSet.StringVar(&dsn, "dsn", "", "project DSN (default: $CSENTRY_DSN, then $SENTRY_DSN)")
	flagSet.StringVarP(&level, "level", "l", "", "message level: debug, info, warning, error or fatal")
	flagSet.StringVar(&loggerName, "logger", "", "logger name attached to the event")
	flagSet.StringArrayVarP(&tags, "tag", "t", nil, "tag as key=value (repeatable)")
	flagSet.StringArrayVarP(&breadcrumbs, "breadcrumb", "b", nil, "breadcrumb message sent before the event (repeatable)")
	flagSet.StringVar(&contextFile, "context-file", "", "JSON or JSONC file with user, tags and extra sections")
	flagSet.Float64Var(&sampleRate, "sample-rate", 1, "fraction of messages to send")
	flagSet.StringVar(&timeout, "timeout", "", "delivery timeout (default 10s)")
	flagSet.BoolVar(&echo, "echo", false, "also print the event to stderr")
	flagSet.StringVar(&cxdbAddress, "cxdb", "", "mirror the event into the cxdb server at this address")
	flagSet.BoolVar(&scrub, "scrub", false, "redact secrets from the message and context")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log delivery details")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")
	flagSet.Usage = func() { printHelp(errOut, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if showVersion {
		fmt.Fprintf(stdout, "csentry %s/%s\n", csentry.SDKName, csentry.SDKVersion)
		return nil
	}

	message := strings.Join(flagSet.Args(), " ")
	if message == "" {
		printHelp(errOut, flagSet)
		return errors.New("no message given")
	}

	cfg, err := LoadConfigFile(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("dsn") {
		cfg.DSN = dsn
	}
	if flagSet.Changed("level") {
		cfg.Level = level
	}
	if flagSet.Changed("logger") {
		cfg.Logger = loggerName
	}
	if flagSet.Changed("context-file") {
		cfg.ContextFile = contextFile
	}
	if flagSet.Changed("sample-rate") {
		cfg.SampleRate = sampleRate
	}
	if flagSet.Changed("timeout") {
		cfg.SendTimeout = timeout
	}
	if flagSet.Changed("cxdb") {
		cfg.CXDBAddress = cxdbAddress
	}
	cfg.Echo = cfg.Echo || echo
	cfg.Scrub = cfg.Scrub || scrub
	cfg.resolveDSN(getenv)
	if cfg.DSN == "" {
		return errors.New("no DSN: pass --dsn, set dsn in the config file, or set CSENTRY_DSN")
	}

	for _, tag := range tags {
		key, value, err := parseTag(tag)
		if err != nil {
			return err
		}
		if cfg.Tags == nil {
			cfg.Tags = make(map[string]string)
		}
		cfg.Tags[key] = value
	}

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: logLevel}))

	return send(cfg, message, breadcrumbs, logger, stdout, errOut)
}

func send(cfg *Config, message string, breadcrumbs []string, logger *slog.Logger, stdout, errOut io.Writer) error {
	levelOpts, err := cfg.LevelOptions()
	if err != nil {
		return err
	}
	sendTimeout, err := cfg.Timeout()
	if err != nil {
		return err
	}

	transports := []csentry.Transport{csentry.NewHTTPTransport()}
	if cfg.Echo {
		transports = append(transports, stderr.NewStderrTransport(stderr.WithWriter(errOut)))
	}
	if cfg.CXDBAddress != "" {
		cxdbClient, err := cxdbclient.Dial(cfg.CXDBAddress, cxdbclient.WithClientTag(csentry.SDKName))
		if err != nil {
			return fmt.Errorf("connecting to cxdb at %s: %w", cfg.CXDBAddress, err)
		}
		defer cxdbClient.Close()
		transports = append(transports, cxdb.NewCXDBTransport(cxdbClient, cxdb.WithClientTag(csentry.SDKName)))
	}
	// The store endpoint stays primary so only its reply sets the event id.
	transport := transports[0]
	if len(transports) > 1 {
		transport = multi.NewMultiTransportWithOptions(transports, multi.WithLogger(logger))
	}

	opts := []csentry.Option{
		csentry.WithTransport(transport),
		csentry.WithLogger(logger),
		csentry.WithSampleRate(cfg.SampleRate),
		csentry.WithSendTimeout(sendTimeout),
	}
	if cfg.Scrub {
		opts = append(opts, csentry.WithDefaultScrubbing())
	}
	if cfg.ContextFile != "" {
		initial, err := loadContextFile(cfg.ContextFile)
		if err != nil {
			return err
		}
		opts = append(opts, csentry.WithInitialContextJSON(initial))
	}

	client, err := csentry.New(cfg.DSN, opts...)
	if err != nil {
		return err
	}

	if len(cfg.Tags) > 0 {
		tags := make(map[string]any, len(cfg.Tags))
		for k, v := range cfg.Tags {
			tags[k] = v
		}
		if _, err := client.UpdateTags(tags); err != nil {
			client.Close()
			return err
		}
	}
	for _, crumb := range breadcrumbs {
		attrs := map[string]any{csentry.AttrCategory: "cli"}
		if err := client.AddBreadcrumb(attrs, csentry.TypeDefault, "%s", crumb); err != nil {
			client.Close()
			return err
		}
	}

	var attrs map[string]any
	if cfg.Logger != "" {
		attrs = map[string]any{csentry.AttrLogger: cfg.Logger}
	}
	if err := client.CaptureMessage(attrs, levelOpts, "%s", message); err != nil {
		client.Close()
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout+time.Second)
	defer cancel()
	if err := client.Flush(ctx); err != nil {
		client.Close()
		return fmt.Errorf("waiting for delivery: %w", err)
	}

	id := client.LastEventID()
	if err := client.Close(); err != nil {
		return err
	}
	<-client.Done()

	if id == uuid.Nil {
		if cfg.SampleRate < 1 {
			logger.Info("csentry: no event id; the message may have been sampled out")
			return nil
		}
		return errNotAcknowledged
	}
	fmt.Fprintln(stdout, csentry.HexID(id))
	return nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `csentry sends one message to a Sentry-compatible store endpoint.

Usage:
  csentry [flags] message...

Examples:
  # Report a failed backup
  csentry --dsn https://key@sentry.example.com/42 --tag job=backup backup failed

  # Leave a trail and report at warning level
  csentry -b "fetched manifest" -b "disk at 91%%" -l warning disk nearly full

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
