package generation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"resume-generator/internal/pricing"
	"resume-generator/internal/shared/metrics"
	"resume-generator/internal/shared/telemetry"
)

// DefaultConcurrency is the admission cap used when none is configured.
const DefaultConcurrency = 15

// ErrInvalidBatch is returned for a non-positive count or concurrency.
var ErrInvalidBatch = errors.New("invalid batch parameters")

// Progress is the state published after every terminal outcome.
type Progress struct {
	Done      int
	Total     int
	Succeeded int
	Failed    int
	TotalCost pricing.Money
	Elapsed   time.Duration
	Last      Item
}

// Observer receives progress updates. Calls are serialized and happen while the
// ledger is locked, so an update is always consistent with the ledger; the
// observer must not block.
type Observer interface {
	Progress(p Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(p Progress)

// Progress calls f.
func (f ObserverFunc) Progress(p Progress) {
	f(p)
}

// Observers fans an update out to every non-nil observer in order.
type Observers []Observer

// Progress implements Observer.
func (o Observers) Progress(p Progress) {
	for _, obs := range o {
		if obs != nil {
			obs.Progress(p)
		}
	}
}

// Options configures a Scheduler.
type Options struct {
	Generator Generator
	Selector  Selector
	Costs     pricing.Model

	// Optional collaborators.
	Renderer  Renderer
	Templates []string
	Limiter   Limiter
	Observer  Observer

	// RenderConcurrency bounds concurrent renders; zero means no extra bound
	// beyond the admission cap.
	RenderConcurrency int
	// Seed fixes per-task randomness; zero derives a seed from the clock.
	Seed uint64
	// Model is copied into reports.
	Model string
}

// Scheduler runs batches of generation tasks under an admission cap.
type Scheduler struct {
	opts Options
}

// NewScheduler validates opts and returns a Scheduler.
func NewScheduler(opts Options) (*Scheduler, error) {
	if opts.Generator == nil {
		return nil, errors.New("generation: generator is required")
	}
	if opts.Selector == nil {
		return nil, errors.New("generation: selector is required")
	}
	if opts.Renderer != nil && len(opts.Templates) == 0 {
		return nil, errors.New("generation: renderer requires at least one template")
	}
	if opts.RenderConcurrency < 0 {
		return nil, fmt.Errorf("%w: render concurrency %d", ErrInvalidBatch, opts.RenderConcurrency)
	}
	return &Scheduler{opts: opts}, nil
}

// batch is the aggregation state of one Run. mu guards every field below it.
type batch struct {
	opts  Options
	total int
	start time.Time

	mu        sync.Mutex
	closed    bool
	ledger    Ledger
	succeeded int
	failed    int
	failedBy  map[ErrorKind]int
	wastedIn  uint64
	wastedOut uint64
	wasted    pricing.Money
	items     []Item
}

// Run dispatches total tasks, numbered from 1, keeping at most concurrency of
// them in flight and returns once every task has an outcome or ctx is done. On cancellation Run
// returns at once with the outcomes recorded so far; tasks still in flight are
// abandoned and whatever they produce later is discarded.
func (s *Scheduler) Run(ctx context.Context, total, concurrency int) (BatchReport, error) {
	if total <= 0 {
		return BatchReport{}, fmt.Errorf("%w: count %d", ErrInvalidBatch, total)
	}
	if concurrency <= 0 {
		return BatchReport{}, fmt.Errorf("%w: concurrency %d", ErrInvalidBatch, concurrency)
	}

	seed := s.opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	var renderSem *semaphore.Weighted
	if s.opts.RenderConcurrency > 0 && s.opts.RenderConcurrency < concurrency {
		renderSem = semaphore.NewWeighted(int64(s.opts.RenderConcurrency))
	}

	b := &batch{
		opts:     s.opts,
		total:    total,
		start:    time.Now(),
		failedBy: make(map[ErrorKind]int, len(Kinds())),
		items:    make([]Item, 0, total),
	}
	batchID := uuid.NewString()
	telemetry.Info("batch.started", map[string]any{
		"batch_id":    batchID,
		"count":       total,
		"concurrency": concurrency,
		"seed":        seed,
	})

	sem := semaphore.NewWeighted(int64(concurrency))
	var wg sync.WaitGroup

	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		t := task{
			index:     i + 1,
			rng:       rand.New(rand.NewPCG(seed, uint64(i+1))),
			selector:  s.opts.Selector,
			generator: s.opts.Generator,
			limiter:   s.opts.Limiter,
			renderer:  s.opts.Renderer,
			renderSem: renderSem,
			templates: s.opts.Templates,
		}
		metrics.IncTaskStarted()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			defer metrics.TaskReleased()
			b.record(ctx, t.run(ctx))
		}()
	}

	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-ctx.Done():
	}

	report := b.close(ctx)
	report.BatchID = batchID
	report.Concurrency = concurrency
	if report.Cancelled {
		telemetry.Warn("batch.cancelled", map[string]any{
			"batch_id":  batchID,
			"completed": report.Completed(),
			"abandoned": report.Abandoned,
		})
	}
	telemetry.Info("batch.completed", map[string]any{
		"batch_id":      batchID,
		"requested":     report.Requested,
		"succeeded":     report.Succeeded,
		"failed":        report.Failed,
		"total_cost":    report.Ledger.TotalCost.Dollars(),
		"elapsed_ms":    report.Elapsed.Milliseconds(),
		"input_tokens":  report.Ledger.InputTokens,
		"output_tokens": report.Ledger.OutputTokens,
	})
	return report, nil
}

// record applies one outcome to the ledger and notifies the observer in the
// same critical section. Outcomes arriving after the batch closed or after
// cancellation are dropped.
func (b *batch) record(ctx context.Context, out Outcome) {
	cost := out.Cost(b.opts.Costs)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || ctx.Err() != nil {
		return
	}

	status := StatusSucceeded
	if !out.Succeeded() {
		status = string(out.Failure.Kind)
	}
	metrics.ObserveTaskDone(status, out.Duration)

	item := Item{
		Index:        out.Index,
		Category:     out.Category,
		Role:         out.Role,
		Tier:         string(out.Tier),
		Years:        out.Years,
		Template:     out.Template,
		Artifact:     out.Artifact,
		InputTokens:  out.InputTokens,
		OutputTokens: out.OutputTokens,
		Cost:         cost,
		Duration:     out.Duration,
	}
	if out.Succeeded() {
		b.ledger.Append(out.InputTokens, out.OutputTokens, cost)
		b.succeeded++
		item.Status = StatusSucceeded
	} else {
		b.failed++
		b.failedBy[out.Failure.Kind]++
		b.wastedIn += out.InputTokens
		b.wastedOut += out.OutputTokens
		b.wasted += cost
		item.Status = StatusFailed
		item.Kind = out.Failure.Kind
		item.Detail = out.Failure.Detail
		telemetry.Error("generation.failed", map[string]any{
			"index":  out.Index,
			"kind":   string(out.Failure.Kind),
			"detail": out.Failure.Detail,
		})
	}
	b.items = append(b.items, item)
	metrics.AddUsage(out.InputTokens, out.OutputTokens, cost.Dollars())

	if b.opts.Observer != nil {
		b.opts.Observer.Progress(Progress{
			Done:      b.succeeded + b.failed,
			Total:     b.total,
			Succeeded: b.succeeded,
			Failed:    b.failed,
			TotalCost: b.ledger.total,
			Elapsed:   time.Since(b.start),
			Last:      item,
		})
	}
}

// close freezes the batch and builds its report.
func (b *batch) close(ctx context.Context) BatchReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true

	failedBy := make(map[ErrorKind]int, len(b.failedBy))
	for k, v := range b.failedBy {
		failedBy[k] = v
	}
	completed := b.succeeded + b.failed
	return BatchReport{
		Model:              b.opts.Model,
		Rates:              b.opts.Costs.Rates(),
		StartedAt:          b.start,
		Elapsed:            time.Since(b.start),
		Requested:          b.total,
		Succeeded:          b.succeeded,
		Failed:             b.failed,
		FailedBy:           failedBy,
		Cancelled:          ctx.Err() != nil && completed < b.total,
		Abandoned:          b.total - completed,
		Ledger:             b.ledger.Snapshot(),
		WastedInputTokens:  b.wastedIn,
		WastedOutputTokens: b.wastedOut,
		WastedCost:         b.wasted,
		Items:              append([]Item(nil), b.items...),
	}
}
