package notify

import (
	"encoding/json"
	"time"

	"resume-generator/internal/generation"
)

// MessageVersion is bumped when the payload shape changes.
const MessageVersion = 1

// Message is the payload sent to downstream consumers when a batch ends.
type Message struct {
	BatchID      string         `json:"batchId"`
	Model        string         `json:"model"`
	Requested    int            `json:"requested"`
	Succeeded    int            `json:"succeeded"`
	Failed       int            `json:"failed"`
	FailedBy     map[string]int `json:"failedBy,omitempty"`
	Cancelled    bool           `json:"cancelled"`
	TotalCostUSD float64        `json:"totalCostUsd"`
	CostLog      string         `json:"costLog,omitempty"`
	CompletedAt  string         `json:"completedAt"`
	Version      int            `json:"version"`
}

// NewMessage summarizes a report. costLog is the cost log location, if any.
func NewMessage(r generation.BatchReport, costLog string, now time.Time) Message {
	var failedBy map[string]int
	for kind, n := range r.FailedBy {
		if n == 0 {
			continue
		}
		if failedBy == nil {
			failedBy = make(map[string]int)
		}
		failedBy[string(kind)] = n
	}
	return Message{
		BatchID:      r.BatchID,
		Model:        r.Model,
		Requested:    r.Requested,
		Succeeded:    r.Succeeded,
		Failed:       r.Failed,
		FailedBy:     failedBy,
		Cancelled:    r.Cancelled,
		TotalCostUSD: r.Ledger.TotalCost.Dollars(),
		CostLog:      costLog,
		CompletedAt:  now.UTC().Format(time.RFC3339),
		Version:      MessageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
