package generation

import (
	"testing"

	"resume-generator/internal/pricing"
)

func TestLedgerTotalMatchesSum(t *testing.T) {
	model := pricing.NewModel(pricing.Rates{InputPerMillion: 50_000, OutputPerMillion: 400_000})
	var l Ledger
	for i := 0; i < 5000; i++ {
		in, out := uint64(300+i%250), uint64(400+i%377)
		l.Append(in, out, model.Cost(in, out))
		if i%500 == 0 {
			snap := l.Snapshot()
			if snap.TotalCost != snap.Sum() {
				t.Fatalf("after %d appends total %d != sum %d", i+1, snap.TotalCost, snap.Sum())
			}
		}
	}
	snap := l.Snapshot()
	if snap.TotalCost != snap.Sum() || len(snap.PerResumeCosts) != 5000 || l.Len() != 5000 {
		t.Fatalf("unexpected snapshot: total=%d sum=%d len=%d", snap.TotalCost, snap.Sum(), len(snap.PerResumeCosts))
	}
}

func TestLedgerSnapshotIsACopy(t *testing.T) {
	var l Ledger
	l.Append(1, 1, 10)
	snap := l.Snapshot()
	l.Append(1, 1, 20)
	if len(snap.PerResumeCosts) != 1 || snap.TotalCost != 10 {
		t.Fatalf("snapshot changed after append: %+v", snap)
	}
}
