package reports

import (
	"errors"
	"time"

	"resume-generator/internal/generation"
	"resume-generator/internal/pricing"
)

// ErrNotFound is returned when a batch id is unknown.
var ErrNotFound = errors.New("batch not found")

// Batch is the stored summary of one run.
type Batch struct {
	ID           string
	Model        string
	Requested    int
	Concurrency  int
	Succeeded    int
	Failed       int
	Cancelled    bool
	InputTokens  uint64
	OutputTokens uint64
	TotalCost    pricing.Money
	WastedCost   pricing.Money
	Elapsed      time.Duration
	StartedAt    time.Time
	Items        []generation.Item
}

// FromReport converts a BatchReport into its stored form.
func FromReport(r generation.BatchReport) Batch {
	return Batch{
		ID:           r.BatchID,
		Model:        r.Model,
		Requested:    r.Requested,
		Concurrency:  r.Concurrency,
		Succeeded:    r.Succeeded,
		Failed:       r.Failed,
		Cancelled:    r.Cancelled,
		InputTokens:  r.Ledger.InputTokens,
		OutputTokens: r.Ledger.OutputTokens,
		TotalCost:    r.Ledger.TotalCost,
		WastedCost:   r.WastedCost,
		Elapsed:      r.Elapsed,
		StartedAt:    r.StartedAt.UTC(),
		Items:        append([]generation.Item(nil), r.Items...),
	}
}
