package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/torosent/variantbench/internal/config"
	"github.com/torosent/variantbench/internal/httpclient"
	"github.com/torosent/variantbench/internal/metrics"
	"github.com/torosent/variantbench/internal/output"
	"github.com/torosent/variantbench/internal/persistence"
	"github.com/torosent/variantbench/internal/runner"
	"github.com/torosent/variantbench/internal/tracing"
)

const tracingShutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one benchmark. Request failures are part of the results and do
// not produce an error; configuration and persistence failures do.
func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	payload, err := cfg.PayloadDocument()
	if err != nil {
		return err
	}

	ctx := context.Background()
	tp, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	// Human-readable text goes to stdout unless stdout is reserved for JSON.
	status := stdout
	if cfg.JSONOutput {
		status = stderr
	}

	b := &bench{
		cfg:    cfg,
		client: httpclient.NewClient(httpclient.RequestTimeout),
		logger: logger,
		status: status,
		diag:   stderr,
	}
	if tp.Enabled() || tp.ShouldPropagate() {
		b.execOpts = append(b.execOpts, httpclient.WithTracing(tp.Tracer(), tp.ShouldPropagate()))
	}

	output.PrintRunHeader(status, cfg.Requests, cfg.Workers, payload)

	var dockerRun, zipRun *persistence.EndpointRun
	if cfg.TestDocker() {
		if dockerRun, err = b.runEndpoint(ctx, cfg.Docker); err != nil {
			return err
		}
	}
	if cfg.TestZip() {
		if zipRun, err = b.runEndpoint(ctx, cfg.Zip); err != nil {
			return err
		}
	}

	var tested []metrics.EndpointStats
	for _, r := range []*persistence.EndpointRun{dockerRun, zipRun} {
		if r != nil {
			tested = append(tested, r.Stats)
		}
	}

	var comparison *metrics.Comparison
	if dockerRun != nil && zipRun != nil {
		if cmp, ok := metrics.Compare(dockerRun.Stats, zipRun.Stats); ok {
			comparison = &cmp
		}
		if !cfg.JSONOutput {
			output.PrintComparison(stdout, dockerRun.Stats, zipRun.Stats)
		}
	}
	if !cfg.JSONOutput {
		output.PrintSummaryTable(stdout, tested...)
	}

	store, err := persistence.NewStore(cfg.OutputDir, cfg.OutputFormat)
	if err != nil {
		return err
	}
	saved, err := store.Save(persistence.Run{
		Payload: payload,
		Docker:  dockerRun,
		Zip:     zipRun,
	})
	if err != nil {
		return err
	}
	paths := []string{saved.SummaryPath, saved.DetailedPath}

	if cfg.PromTextfile != "" {
		runMetrics := persistence.NewRunMetrics()
		for _, r := range []*persistence.EndpointRun{dockerRun, zipRun} {
			if r != nil {
				runMetrics.Observe(r.Stats, r.Outcomes)
			}
		}
		if err := runMetrics.WriteTextfile(cfg.PromTextfile); err != nil {
			return err
		}
		paths = append(paths, cfg.PromTextfile)
	}
	output.PrintSaved(status, paths...)

	if cfg.JSONOutput {
		return output.PrintJSONReport(stdout, output.Report{
			RunID:      saved.RunID,
			Endpoints:  tested,
			Comparison: comparison,
		})
	}
	return nil
}

type bench struct {
	cfg      *config.Config
	client   httpclient.Doer
	execOpts []httpclient.ExecutorOption
	logger   *logrus.Logger
	status   io.Writer
	diag     io.Writer
}

// runEndpoint drives the configured number of attempts against endpoint and
// prints its report. Endpoints are run one after another.
func (b *bench) runEndpoint(ctx context.Context, endpoint config.Endpoint) (*persistence.EndpointRun, error) {
	builder, err := httpclient.NewRequestBuilder(b.cfg, endpoint)
	if err != nil {
		return nil, err
	}
	exec := httpclient.NewExecutor(b.client, builder, b.execOpts...)

	output.PrintEndpointHeader(b.status, endpoint.Name, endpoint.URL, b.cfg.Requests, b.cfg.Workers)

	collector := metrics.NewCollector(b.cfg.Requests)
	progress := output.NewProgressReporter(b.status, output.DefaultProgressEvery, collector)
	r := runner.New(runner.Options{
		Workers:       b.cfg.Workers,
		TotalRequests: b.cfg.Requests,
		Executor:      runner.WithDiagnostics(exec, endpoint.Name, b.logger),
		Collector:     collector,
		OnComplete:    progress.Observe,
	})
	res := r.Run(ctx)

	stats := metrics.Aggregate(endpoint.Name, res.Outcomes, b.cfg.Requests)
	b.logger.WithFields(logrus.Fields{
		"endpoint":  endpoint.Name,
		"successes": res.Successes,
		"failures":  res.Failures,
		"duration":  res.Duration.String(),
	}).Info("endpoint run finished")

	if !b.cfg.JSONOutput {
		output.PrintReport(b.status, stats)
		if stats.FailedRequests > 0 {
			fmt.Fprintln(b.diag, "Detailed error logs written to stderr")
		}
	}
	return &persistence.EndpointRun{Stats: stats, Outcomes: res.Outcomes}, nil
}

func newLogger(w io.Writer, level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level == "" {
		level = config.DefaultLogLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}
