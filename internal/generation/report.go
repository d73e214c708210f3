package generation

import (
	"time"

	"resume-generator/internal/pricing"
)

// Item is the per-resume record kept in a BatchReport.
type Item struct {
	Index        int
	Status       string
	Kind         ErrorKind
	Detail       string
	Category     string
	Role         string
	Tier         string
	Years        int
	Template     string
	Artifact     string
	InputTokens  uint64
	OutputTokens uint64
	Cost         pricing.Money
	Duration     time.Duration
}

// Item statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// BatchReport is the terminal snapshot of one Run.
type BatchReport struct {
	BatchID   string
	Model     string
	Rates     pricing.Rates
	StartedAt time.Time
	Elapsed   time.Duration

	Requested   int
	Concurrency int
	Succeeded   int
	Failed      int
	FailedBy    map[ErrorKind]int

	// Cancelled is set when the run stopped before every task finished.
	// Abandoned counts the tasks that never contributed an outcome.
	Cancelled bool
	Abandoned int

	Ledger LedgerSnapshot

	// Tokens billed for items that were lost after the service answered.
	WastedInputTokens  uint64
	WastedOutputTokens uint64
	WastedCost         pricing.Money

	// Items in completion order.
	Items []Item
}

// Completed returns the number of terminal outcomes.
func (r BatchReport) Completed() int {
	return r.Succeeded + r.Failed
}

// AverageCost returns the mean cost per successful resume. ok is false when
// nothing succeeded, in which case the average is zero.
func (r BatchReport) AverageCost() (avg pricing.Money, ok bool) {
	if r.Succeeded == 0 {
		return 0, false
	}
	return r.Ledger.TotalCost / pricing.Money(r.Succeeded), true
}

// Throughput returns successful resumes per second.
func (r BatchReport) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Succeeded) / r.Elapsed.Seconds()
}

// SuccessRate returns succeeded over completed, or zero for an empty batch.
func (r BatchReport) SuccessRate() float64 {
	if r.Completed() == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Completed())
}

// BilledCost is the ledger total plus the cost of lost items.
func (r BatchReport) BilledCost() pricing.Money {
	return r.Ledger.TotalCost + r.WastedCost
}
