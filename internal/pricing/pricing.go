package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in picodollars (1e-12 USD). Token prices are quoted in
// micro-dollars per million tokens, so every per-request cost is an exact integer
// and sums never drift.
type Money int64

const picosPerDollar = 1_000_000_000_000

// Dollars converts the amount to floating-point USD for display.
func (m Money) Dollars() float64 {
	return float64(m) / picosPerDollar
}

// String formats the amount as USD with six decimals.
func (m Money) String() string {
	return "$" + strconv.FormatFloat(m.Dollars(), 'f', 6, 64)
}

// FromDollars converts a USD amount to Money, rounding to the nearest picodollar.
func FromDollars(usd float64) Money {
	return Money(math.Round(usd * picosPerDollar))
}

// ErrInvalidRate indicates a negative or non-finite price.
var ErrInvalidRate = errors.New("invalid token price")

// Rates holds per-million-token prices in micro-dollars.
type Rates struct {
	InputPerMillion  int64
	OutputPerMillion int64
}

// NewRates builds Rates from USD-per-million prices, e.g. 0.05 and 0.40.
func NewRates(inputUSDPerMillion, outputUSDPerMillion float64) (Rates, error) {
	in, err := toMicros(inputUSDPerMillion)
	if err != nil {
		return Rates{}, fmt.Errorf("input price: %w", err)
	}
	out, err := toMicros(outputUSDPerMillion)
	if err != nil {
		return Rates{}, fmt.Errorf("output price: %w", err)
	}
	return Rates{InputPerMillion: in, OutputPerMillion: out}, nil
}

// USD returns the input and output prices in USD per million tokens.
func (r Rates) USD() (input, output float64) {
	return float64(r.InputPerMillion) / 1_000_000, float64(r.OutputPerMillion) / 1_000_000
}

func toMicros(usd float64) (int64, error) {
	if math.IsNaN(usd) || math.IsInf(usd, 0) || usd < 0 {
		return 0, ErrInvalidRate
	}
	return int64(math.Round(usd * 1_000_000)), nil
}

// Model prices token usage with a fixed rate table. It holds no mutable state and
// is safe for concurrent use.
type Model struct {
	rates Rates
}

// NewModel constructs a cost model for the given rates.
func NewModel(rates Rates) Model {
	return Model{rates: rates}
}

// Rates returns the configured rate table.
func (m Model) Rates() Rates {
	return m.rates
}

// Cost returns inputTokens/1M*inputPrice + outputTokens/1M*outputPrice.
//
// One token at R micro-dollars per million costs exactly R picodollars.
func (m Model) Cost(inputTokens, outputTokens uint64) Money {
	return Money(inputTokens)*Money(m.rates.InputPerMillion) +
		Money(outputTokens)*Money(m.rates.OutputPerMillion)
}
