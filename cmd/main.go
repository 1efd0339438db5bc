package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"certpipe/config"
	"certpipe/pkg/batcher"
	"certpipe/pkg/certstream"
	"certpipe/pkg/csvout"
	"certpipe/pkg/domainage"
	"certpipe/pkg/fuzzer"
	"certpipe/pkg/homoglyph"
	"certpipe/pkg/ledger"
	"certpipe/pkg/mattermost"
	"certpipe/pkg/metrics"
	"certpipe/pkg/processor"
	"certpipe/pkg/screenshot"
	"certpipe/pkg/slack"
	"certpipe/pkg/universe"
	"certpipe/pkg/urlscan"

	"github.com/arl/statsviz"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	a := kingpin.New(filepath.Base(os.Args[0]), "Monitor CertStream for look-alike domains of your keywords")
	configFile := a.Flag("configfile", "config file").Short('c').ExistingFile()
	fuzz := a.Flag("fuzz", "print the permutations of a keyword and exit").String()
	plausible := a.Flag("plausible", "with --fuzz, only print candidates that are valid domain names").Bool()
	a.HelpFlag.Short('h')

	_, err := a.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrapf(err, "Error parsing commandline arguments"))
		a.Usage(os.Args[1:])
		os.Exit(2)
	}

	if *fuzz != "" {
		printVariants(*fuzz, *plausible)
		return
	}

	cfg := config.GetConfig(configFile)
	if err := run(cfg); err != nil {
		cfg.Log.Fatal(err)
	}
}

// printVariants writes one "strategy domain" line per permutation of seed
func printVariants(seed string, plausible bool) {
	for _, v := range fuzzer.Generate(seed) {
		if plausible && !fuzzer.IsPlausibleDomain(v.Domain) {
			continue
		}
		fmt.Printf("%-14s %s\n", v.Strategy, v.Domain)
	}
}

func run(cfg *config.Configuration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logConfiguration(cfg)

	cfg.Log.Info("Keyword fuzzer starting...")
	u, err := universe.Build(cfg.Keywords, cfg.NoFuzzKeywords, cfg.IgnoreKeywords)
	if err != nil {
		return errors.Wrap(err, "can't build keyword universe")
	}
	metrics.UniverseSize.Set(float64(u.Len()))
	cfg.Log.Info("Keyword fuzzer finished")
	cfg.Log.Infof("%d fuzzed keywords created", u.Len())

	var notifiers []batcher.Notifier
	if cfg.EnableSlack {
		notifiers = append(notifiers, slack.NewClient(cfg.SlackToken, cfg.SlackChannel))
	}
	if cfg.EnableMattermost {
		notifiers = append(notifiers, mattermost.NewClient(cfg.MattermostWebhookURL, cfg.MattermostUsername, cfg.MattermostIconURL))
	}
	b := batcher.New(time.Duration(cfg.AlertSendFrequency)*time.Second, cfg.Log, notifiers...)

	p := &processor.Processor{
		Universe:  u,
		Ledger:    ledger.New(cfg.LedgerLimit),
		Batcher:   b,
		Log:       cfg.Log,
		DecodeIDN: cfg.DecodeIDN,
		Out:       os.Stdout,
	}
	if cfg.DecodeIDN {
		p.Homoglyphs = homoglyph.GetHomoglyphMap()
	}
	if cfg.EnableURLScan {
		p.Scanner = urlscan.NewClient(cfg.URLScanAPIKey, cfg.URLScanRate, cfg.Log)
	}
	if cfg.EnableCSVOutput {
		p.CSV = csvout.NewWriter(cfg.OutputCSVFile)
	}
	if cfg.IgnoreOlderThan > 0 {
		p.Age = domainage.NewChecker(cfg.IgnoreOlderThan, cfg.Log)
	}
	if cfg.TakeScreenshot {
		p.Screenshots = screenshot.NewTaker(cfg.ScreenshotUploadURL, cfg.Log)
	}

	msgs := make(chan []byte, 50)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.Run(gctx)
		return nil
	})
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			p.Run(gctx, msgs)
			return nil
		})
	}
	g.Go(func() error {
		cfg.Log.Info("CertStream listener starting...")
		return certstream.NewClient(cfg.CertStreamURL, cfg.Log).Run(gctx, msgs)
	})
	if cfg.DebugAddr != "" {
		srv, err := debugServer(cfg.DebugAddr)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "debug server")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	cfg.Log.Info("CertStream listener stopped")
	return err
}

// debugServer serves statsviz on /debug/statsviz and Prometheus metrics on /metrics
func debugServer(addr string) (*http.Server, error) {
	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		return nil, errors.Wrap(err, "statsviz")
	}
	mux.Handle("/metrics", metrics.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}, nil
}

func logConfiguration(cfg *config.Configuration) {
	cfg.Log.Infof("Logging level: %s", cfg.Log.GetLevel())
	cfg.Log.Infof("CSV output file: %s", enabled(cfg.EnableCSVOutput))
	cfg.Log.Infof("Slack alerting: %s", enabled(cfg.EnableSlack))
	cfg.Log.Infof("Mattermost alerting: %s", enabled(cfg.EnableMattermost))
	if cfg.NotificationsEnabled() {
		cfg.Log.Infof("Remote alerts will be sent every %d seconds", cfg.AlertSendFrequency)
	}
	cfg.Log.Infof("URLScan.io submission: %s", enabled(cfg.EnableURLScan))
	if cfg.EnableURLScan {
		cfg.Log.Info("Note: URLScan.io links will return an HTTP 404 response until the scan has finished (~10s)")
	}
	cfg.Log.Infof("%d keywords in config file", len(cfg.Keywords))
	cfg.Log.Infof("%d 'No-fuzz' keywords in config file", len(cfg.NoFuzzKeywords))
	cfg.Log.Infof("%d 'Ignore' keywords in config file", len(cfg.IgnoreKeywords))
}

func enabled(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}
