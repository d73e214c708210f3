package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"resume-generator/internal/bootstrap"
	"resume-generator/internal/shared/config"
	"resume-generator/internal/shared/server"
	"resume-generator/internal/shared/telemetry"
	"resume-generator/internal/shared/tracing"
)

const (
	serviceName     = "resume-generator"
	shutdownTimeout = 30 * time.Second
)

// flagKeys maps CLI flags onto configuration keys.
var flagKeys = map[string]string{
	"count":              "batch.count",
	"concurrency":        "batch.concurrency",
	"render-concurrency": "batch.render_concurrency",
	"seed":               "batch.seed",
	"model":              "llm.model",
	"retries":            "llm.retries",
	"out":                "output.dir",
	"save-costs":         "output.save_costs",
	"verify":             "output.verify",
	"metrics-addr":       "metrics.addr",
	"rpm":                "ratelimit.rpm",
	"log-level":          "log.level",
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		quiet      bool
	)
	v := config.New()

	cmd := &cobra.Command{
		Use:           "generate",
		Short:         "Generate synthetic resumes with a text-generation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.LoadEnvFiles(".env", "cmd/.env")
			cfg, err := config.Load(v, configFile)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			var bar io.Writer = cmd.ErrOrStderr()
			if quiet {
				bar = io.Discard
			}
			err = run(cmd.Context(), cfg, bar, cmd.OutOrStdout())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			return err
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&configFile, "config", "", "optional YAML config file")
	fs.BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	fs.IntP("count", "n", 800, "number of resumes to generate")
	fs.Int("concurrency", 15, "maximum concurrent generation calls")
	fs.Int("render-concurrency", 0, "maximum concurrent renders (0 = same as concurrency)")
	fs.Uint64("seed", 0, "random seed (0 = time based)")
	fs.String("model", "gpt-5-nano", "generation model")
	fs.Int("retries", 0, "retries per request for transient service errors")
	fs.String("out", "output", "output directory for the local store")
	fs.Bool("save-costs", false, "write cost_log.json next to the resumes")
	fs.Bool("verify", false, "re-read every PDF and check its text")
	fs.String("metrics-addr", "", "serve /metrics, /healthz and /progress on this address")
	fs.Int("rpm", 0, "requests per minute across processes (0 = unlimited)")
	fs.String("log-level", "info", "log level")

	if err := config.BindFlags(v, fs, flagKeys); err != nil {
		panic(err)
	}
	return cmd
}

func run(parent context.Context, cfg config.Config, progressOut, summaryOut io.Writer) error {
	telemetry.SetLevel(cfg.Log.Level)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	bar := newProgressBar(progressOut)
	app, err := bootstrap.Build(ctx, cfg, bootstrap.WithObserver(bar))
	if err != nil {
		return err
	}
	defer app.Close()

	serverCtx, stopServer := context.WithCancel(context.Background())
	serverDone := make(chan struct{})
	if cfg.Metrics.Addr != "" {
		go func() {
			defer close(serverDone)
			if err := server.Serve(serverCtx, cfg.Metrics.Addr, server.NewRouter(app.Progress, app.Health)); err != nil {
				telemetry.Error("status_server.failed", map[string]any{"error": err.Error()})
			}
		}()
	} else {
		close(serverDone)
	}
	defer func() {
		stopServer()
		<-serverDone
	}()

	report, err := app.Run(ctx)
	bar.Finish()
	if err != nil {
		return err
	}

	// Sinks run even after an interrupt so a partial batch is still recorded.
	finishCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	costLog, finishErr := app.Finish(finishCtx, report)

	fmt.Fprintln(summaryOut, renderSummary(report, costLog))

	if report.Cancelled {
		return errors.Join(errInterrupted, finishErr)
	}
	return finishErr
}

var errInterrupted = errors.New("batch interrupted before completion")
