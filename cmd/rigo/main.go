package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/raven-go"

	"github.com/jroosing/rigo/internal/config"
	"github.com/jroosing/rigo/internal/dns"
	"github.com/jroosing/rigo/internal/logging"
	"github.com/jroosing/rigo/internal/meta"
	"github.com/jroosing/rigo/internal/resolver"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML configuration file (or set RIGO_CONFIG)")
		server     = flag.String("server", "", "Resolver address as host[:port] (port defaults to 53)")
		qtype      = flag.String("qtype", "", "Query type (mnemonic like A, AAAA, CNAME, or numeric)")
		timeout    = flag.Duration("timeout", 0, "Per-attempt timeout (0 means config/default)")
		retries    = flag.Int("retries", -1, "Additional attempts after a timeout (-1 means config/default)")
		deadline   = flag.Duration("deadline", 0, "Overall deadline for the whole batch (0 means none)")
		quiet      = flag.Bool("quiet", false, "Suppress record output (exit status indicates success)")
		showStats  = flag.Bool("stats", false, "Print batch statistics after the lookups")
		jsonLogs   = flag.Bool("json-logs", false, "Enable JSON structured logging")
		debug      = flag.Bool("debug", false, "Enable debug logging")
		version    = flag.Bool("version", false, "Print the compiled version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("rigo/%s\n", meta.VersionSHA)
		return
	}

	hostnames := flag.Args()
	if len(hostnames) == 0 {
		fmt.Fprintln(os.Stderr, "usage: rigo [flags] hostname [hostname...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override file values
	if *server != "" {
		normalized, err := config.NormalizeServer(*server)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		cfg.Resolver.Server = normalized
	}
	if *qtype != "" {
		cfg.Resolver.RecordType = *qtype
	}
	if *timeout > 0 {
		cfg.ParsedTimeout = *timeout
	}
	if *retries >= 0 {
		cfg.Resolver.Retries = *retries
	}
	if *jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if *debug {
		cfg.Logging.Level = "DEBUG"
	}

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
	})

	// Error reporting
	if cfg.Application.SentryDSN != "" {
		raven.SetDSN(cfg.Application.SentryDSN)
		raven.SetRelease(meta.VersionSHA)
	}

	rt, err := dns.ParseRecordType(cfg.Resolver.RecordType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	r := resolver.New(cfg.Resolver.Server, rt, cfg.ParsedTimeout, cfg.Resolver.Retries)
	r.Logger = logger

	logger.Debug("starting lookups",
		"server", r.Server,
		"qtype", rt.String(),
		"timeout", cfg.ParsedTimeout,
		"retries", cfg.Resolver.Retries,
		"hostnames", len(hostnames),
	)

	ctx := context.Background()
	if *deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *deadline)
		defer cancel()
	}

	var outcomes []resolver.Outcome
	raven.CapturePanic(func() {
		outcomes = r.Resolve(ctx, hostnames)
	}, nil)

	ok := true
	for _, out := range outcomes {
		if !printOutcome(out, *quiet) {
			ok = false
		}
	}

	if *showStats {
		printStats(r.Stats.Snapshot())
	}

	if !ok {
		os.Exit(1)
	}
}

// printOutcome reports one hostname's result and returns whether the lookup
// counts as a success for the exit code.
func printOutcome(out resolver.Outcome, quiet bool) bool {
	switch {
	case out.Err != nil:
		fmt.Fprintf(os.Stderr, "rigo: %s: %v\n", out.Hostname, out.Err)
		return false
	case out.RCode != dns.RCodeNoError:
		fmt.Fprintf(os.Stderr, "rigo: %s: server returned %s\n", out.Hostname, out.RCode)
		return false
	}
	if quiet {
		return true
	}
	if len(out.Records) == 0 {
		fmt.Fprintf(os.Stderr, "rigo: %s: no records\n", out.Hostname)
		return true
	}
	for _, rec := range out.Records {
		fmt.Printf("%s\t%d\t%s\t%s\t%s\n", rec.Name, rec.TTL, rec.Class, rec.Type, rec.Data)
	}
	return true
}

func printStats(s resolver.Snapshot) {
	fmt.Fprintf(os.Stderr, ";; queries=%d answered=%d timeouts=%d nxdomain=%d server_errors=%d failures=%d avg_latency=%s\n",
		s.QueriesTotal, s.Answered, s.Timeouts, s.NXDomain, s.ServerErrors, s.Failures,
		(time.Duration(s.AvgLatencyMs * float64(time.Millisecond))).Round(time.Microsecond),
	)
}
