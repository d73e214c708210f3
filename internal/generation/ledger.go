package generation

import "resume-generator/internal/pricing"

// Ledger accumulates token counts and per-resume costs in completion order.
// It is not safe for concurrent use; the Scheduler guards it.
type Ledger struct {
	inputTokens  uint64
	outputTokens uint64
	costs        []pricing.Money
	total        pricing.Money
}

// Append records one successful resume.
func (l *Ledger) Append(inputTokens, outputTokens uint64, cost pricing.Money) {
	l.inputTokens += inputTokens
	l.outputTokens += outputTokens
	l.costs = append(l.costs, cost)
	l.total += cost
}

// Len returns the number of recorded resumes.
func (l *Ledger) Len() int {
	return len(l.costs)
}

// Snapshot copies the ledger.
func (l *Ledger) Snapshot() LedgerSnapshot {
	return LedgerSnapshot{
		InputTokens:    l.inputTokens,
		OutputTokens:   l.outputTokens,
		TotalCost:      l.total,
		PerResumeCosts: append([]pricing.Money(nil), l.costs...),
	}
}

// LedgerSnapshot is an immutable copy of a Ledger.
type LedgerSnapshot struct {
	InputTokens    uint64
	OutputTokens   uint64
	TotalCost      pricing.Money
	PerResumeCosts []pricing.Money
}

// Sum recomputes the total from the per-resume costs.
func (s LedgerSnapshot) Sum() pricing.Money {
	var sum pricing.Money
	for _, c := range s.PerResumeCosts {
		sum += c
	}
	return sum
}
