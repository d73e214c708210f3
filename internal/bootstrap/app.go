package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-generator/internal/catalog"
	"resume-generator/internal/generation"
	"resume-generator/internal/llm"
	openai "resume-generator/internal/llm/openai"
	"resume-generator/internal/notify"
	"resume-generator/internal/pricing"
	"resume-generator/internal/ratelimit"
	"resume-generator/internal/render"
	"resume-generator/internal/reports"
	"resume-generator/internal/services/health"
	"resume-generator/internal/shared/config"
	"resume-generator/internal/shared/server"
	"resume-generator/internal/shared/storage/db"
	"resume-generator/internal/shared/storage/object"
	localstore "resume-generator/internal/shared/storage/object/local"
	s3store "resume-generator/internal/shared/storage/object/s3"
	"resume-generator/internal/shared/telemetry"
)

// retryBaseDelay is the first backoff step of the optional LLM retries.
const retryBaseDelay = time.Second

// App holds the dependencies of one generation run.
type App struct {
	Config    config.Config
	DB        *sql.DB
	Store     object.Store
	Catalog   *catalog.Registry
	Costs     pricing.Model
	Reports   reports.Repo
	Notifier  notify.Client
	Health    *health.Service
	Progress  *server.Tracker
	Scheduler *generation.Scheduler

	closers []func() error
}

type buildOptions struct {
	client   llm.Client
	observer generation.Observer
	notifier notify.Client
}

// Option customizes Build.
type Option func(*buildOptions)

// WithLLMClient replaces the configured provider client.
func WithLLMClient(c llm.Client) Option {
	return func(o *buildOptions) { o.client = c }
}

// WithObserver adds a progress observer next to the built-in tracker.
func WithObserver(obs generation.Observer) Option {
	return func(o *buildOptions) { o.observer = obs }
}

// WithNotifier replaces the configured completion notifier.
func WithNotifier(n notify.Client) Option {
	return func(o *buildOptions) { o.notifier = n }
}

// Build validates configuration and wires every dependency. Configuration
// problems are returned before any generation call is made.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	app := &App{
		Config:   cfg,
		Health:   health.NewService(),
		Progress: &server.Tracker{},
	}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	registry, err := catalog.Load(cfg.Catalog.Path, cfg.Catalog.CategoryWeights)
	if err != nil {
		return nil, err
	}
	app.Catalog = registry

	rates, err := pricing.NewRates(cfg.Pricing.InputPerMillion, cfg.Pricing.OutputPerMillion)
	if err != nil {
		return nil, fmt.Errorf("pricing: %w", err)
	}
	app.Costs = pricing.NewModel(rates)

	client := bo.client
	if client == nil {
		client, err = buildLLM(cfg)
		if err != nil {
			return nil, err
		}
	}
	client = llm.WithRetries(client, cfg.LLM.Retries, retryBaseDelay)

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return nil, err
	}

	if err := app.buildReports(ctx); err != nil {
		return nil, err
	}

	limiter, err := app.buildLimiter(ctx)
	if err != nil {
		return nil, err
	}

	app.Notifier = bo.notifier
	if app.Notifier == nil {
		if app.Notifier, err = buildNotifier(ctx, cfg); err != nil {
			return nil, err
		}
	}

	schedOpts := generation.Options{
		Generator:         generation.NewGenerator(client),
		Selector:          registry,
		Costs:             app.Costs,
		Renderer:          render.NewRenderer(app.Store, cfg.Output.Verify),
		Templates:         render.Templates(),
		Observer:          generation.Observers{app.Progress, bo.observer},
		RenderConcurrency: cfg.Batch.RenderConcurrency,
		Seed:              cfg.Batch.Seed,
		Model:             cfg.LLM.Model,
	}
	if limiter != nil {
		schedOpts.Limiter = limiter
	}
	if app.Scheduler, err = generation.NewScheduler(schedOpts); err != nil {
		return nil, err
	}

	ok = true
	return app, nil
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	client, err := openai.NewClient(openai.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	return client, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.Output.Store {
	case "s3":
		return s3store.New(ctx, cfg.Output.S3Region, cfg.Output.S3Bucket, cfg.Output.S3Prefix, cfg.Output.SSEKMSKeyID)
	default:
		return localstore.New(cfg.Output.Dir), nil
	}
}

func (a *App) buildReports(ctx context.Context) error {
	if strings.TrimSpace(a.Config.DatabaseURL) == "" {
		a.Reports = reports.NewMemoryRepo()
		return nil
	}
	sqlDB, err := db.Connect(ctx, a.Config.DatabaseURL, db.OptionsFromEnv(db.DefaultBatchOptions()))
	if err != nil {
		return err
	}
	a.closers = append(a.closers, sqlDB.Close)
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	a.DB = sqlDB
	a.Reports = &reports.PGRepo{DB: sqlDB}
	a.Health.Register("postgres", sqlDB.PingContext)
	return nil
}

func (a *App) buildLimiter(ctx context.Context) (*ratelimit.Limiter, error) {
	rl := a.Config.RateLimit
	if rl.RPM <= 0 {
		return nil, nil
	}
	var window ratelimit.Window = ratelimit.NewLocalWindow()
	if addr := strings.TrimSpace(rl.RedisAddr); addr != "" {
		rdb, err := ratelimit.Dial(ctx, addr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		a.Health.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		window = ratelimit.NewRedisWindow(rdb)
	}
	return ratelimit.NewPerMinute(window, ratelimit.Key(a.Config.LLM.Model), rl.RPM)
}

func buildNotifier(ctx context.Context, cfg config.Config) (notify.Client, error) {
	if strings.TrimSpace(cfg.Notify.SQSQueueURL) == "" {
		return notify.Nop{}, nil
	}
	return notify.NewSQSClient(ctx, cfg.Notify.SQSQueueURL, cfg.Notify.Region)
}

// Run executes one batch with the configured count and concurrency.
func (a *App) Run(ctx context.Context) (generation.BatchReport, error) {
	return a.Scheduler.Run(ctx, a.Config.Batch.Count, a.Config.Batch.Concurrency)
}

// Finish hands a report to every configured sink and returns the cost log
// location when one was written. Sink failures are joined; the report itself
// is already complete.
func (a *App) Finish(ctx context.Context, report generation.BatchReport) (string, error) {
	var (
		errs    []error
		costLog string
	)
	if a.Config.Output.SaveCosts {
		loc, err := reports.WriteCostLog(ctx, a.Store, report)
		if err != nil {
			errs = append(errs, err)
		} else {
			costLog = loc
			telemetry.Info("cost_log.saved", map[string]any{"location": loc})
		}
	}
	if err := a.Reports.Save(ctx, reports.FromReport(report)); err != nil {
		errs = append(errs, fmt.Errorf("save report: %w", err))
	}
	if err := a.Notifier.Send(ctx, notify.NewMessage(report, costLog, time.Now())); err != nil {
		errs = append(errs, fmt.Errorf("notify: %w", err))
	}
	for _, err := range errs {
		telemetry.Error("batch.sink_failed", map[string]any{"batch_id": report.BatchID, "error": err.Error()})
	}
	return costLog, errors.Join(errs...)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
