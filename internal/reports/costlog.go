package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"resume-generator/internal/generation"
	"resume-generator/internal/shared/storage/object"
)

// CostLogKey is the object key of the cost log.
const CostLogKey = "cost_log.json"

// CostLog is the JSON summary written when cost saving is enabled.
type CostLog struct {
	BatchID             string         `json:"batch_id"`
	Model               string         `json:"model,omitempty"`
	InputPricePerMUSD   float64        `json:"input_price_per_million_usd"`
	OutputPricePerMUSD  float64        `json:"output_price_per_million_usd"`
	TotalResumes        int            `json:"total_resumes"`
	Requested           int            `json:"requested"`
	Failed              int            `json:"failed"`
	FailuresByKind      map[string]int `json:"failures_by_kind"`
	Cancelled           bool           `json:"cancelled"`
	TotalTimeSeconds    float64        `json:"total_time_seconds"`
	TotalInputTokens    uint64         `json:"total_input_tokens"`
	TotalOutputTokens   uint64         `json:"total_output_tokens"`
	TotalCostUSD        float64        `json:"total_cost_usd"`
	AvgCostPerResumeUSD float64        `json:"avg_cost_per_resume_usd"`
	WastedCostUSD       float64        `json:"wasted_cost_usd"`
	PerResumeCostsUSD   []float64      `json:"per_resume_costs_usd"`
}

// NewCostLog summarizes a report. Per-resume costs keep completion order.
func NewCostLog(r generation.BatchReport) CostLog {
	failures := make(map[string]int, len(generation.Kinds()))
	for _, k := range generation.Kinds() {
		failures[string(k)] = r.FailedBy[k]
	}
	perResume := make([]float64, 0, len(r.Ledger.PerResumeCosts))
	for _, c := range r.Ledger.PerResumeCosts {
		perResume = append(perResume, c.Dollars())
	}
	avg, _ := r.AverageCost()
	inPrice, outPrice := r.Rates.USD()
	return CostLog{
		BatchID:             r.BatchID,
		Model:               r.Model,
		InputPricePerMUSD:   inPrice,
		OutputPricePerMUSD:  outPrice,
		TotalResumes:        r.Succeeded,
		Requested:           r.Requested,
		Failed:              r.Failed,
		FailuresByKind:      failures,
		Cancelled:           r.Cancelled,
		TotalTimeSeconds:    r.Elapsed.Seconds(),
		TotalInputTokens:    r.Ledger.InputTokens,
		TotalOutputTokens:   r.Ledger.OutputTokens,
		TotalCostUSD:        r.Ledger.TotalCost.Dollars(),
		AvgCostPerResumeUSD: avg.Dollars(),
		WastedCostUSD:       r.WastedCost.Dollars(),
		PerResumeCostsUSD:   perResume,
	}
}

// WriteCostLog stores the cost log and returns its location.
func WriteCostLog(ctx context.Context, store object.Store, r generation.BatchReport) (string, error) {
	payload, err := json.MarshalIndent(NewCostLog(r), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode cost log: %w", err)
	}
	if _, err := store.Put(ctx, CostLogKey, "application/json", bytes.NewReader(payload)); err != nil {
		return "", fmt.Errorf("store cost log: %w", err)
	}
	return store.Location(CostLogKey), nil
}
