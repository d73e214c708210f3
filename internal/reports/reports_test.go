package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-generator/internal/generation"
	"resume-generator/internal/pricing"
	"resume-generator/internal/shared/storage/object/local"
)

func sampleReport() generation.BatchReport {
	cost := pricing.Money(253_000_000)
	return generation.BatchReport{
		BatchID:     "3f1c7d4e-2a6b-4a59-9a11-7f0f1f1b2c3d",
		Model:       "gpt-5-nano",
		Rates:       pricing.Rates{InputPerMillion: 100_000, OutputPerMillion: 400_000},
		StartedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Elapsed:     4 * time.Second,
		Requested:   3,
		Concurrency: 2,
		Succeeded:   2,
		Failed:      1,
		FailedBy:    map[generation.ErrorKind]int{generation.KindMalformedResponse: 1},
		Ledger: generation.LedgerSnapshot{
			InputTokens:    900,
			OutputTokens:   1040,
			TotalCost:      2 * cost,
			PerResumeCosts: []pricing.Money{cost, cost},
		},
		WastedInputTokens: 450,
		WastedCost:        pricing.Money(45_000_000),
		Items: []generation.Item{
			{Index: 1, Status: generation.StatusSucceeded, Category: "Technology", Role: "Data Engineer", Tier: "mid", Years: 6, Template: "modern", Artifact: "output/resume_0001.pdf", InputTokens: 450, OutputTokens: 520, Cost: cost, Duration: 1500 * time.Millisecond},
			{Index: 0, Status: generation.StatusFailed, Kind: generation.KindMalformedResponse, Detail: "summary is required", Category: "Finance", Role: "Analyst", Tier: "junior", Years: 2, InputTokens: 450, Cost: pricing.Money(45_000_000), Duration: time.Second},
			{Index: 2, Status: generation.StatusSucceeded, Category: "Healthcare", Role: "Nurse", Tier: "senior", Years: 12, Template: "classic", Artifact: "output/resume_0002.pdf", InputTokens: 450, OutputTokens: 520, Cost: cost, Duration: 2 * time.Second},
		},
	}
}

func TestPGRepoSaveInsertsBatchAndItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	batch := FromReport(sampleReport())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO batches").
		WithArgs(
			batch.ID,
			"gpt-5-nano",
			3,
			2,
			2,
			1,
			false,
			int64(900),
			int64(1040),
			int64(506_000_000),
			int64(45_000_000),
			int64(4000),
			batch.StartedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	for seq, item := range batch.Items {
		mock.ExpectExec("INSERT INTO batch_items").
			WithArgs(
				batch.ID,
				seq,
				item.Index,
				item.Status,
				sqlmock.AnyArg(), // error_kind
				sqlmock.AnyArg(), // error_detail
				item.Category,
				item.Role,
				item.Tier,
				item.Years,
				sqlmock.AnyArg(), // template
				sqlmock.AnyArg(), // artifact
				int64(item.InputTokens),
				int64(item.OutputTokens),
				int64(item.Cost),
				item.Duration.Milliseconds(),
			).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := repo.Save(context.Background(), batch); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSaveRollsBackOnItemError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO batches").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO batch_items").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	if err := repo.Save(context.Background(), FromReport(sampleReport())); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM batches").
		WithArgs("batch-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "model", "requested", "concurrency", "succeeded", "failed", "cancelled",
			"input_tokens", "output_tokens", "total_cost_picousd", "wasted_cost_picousd", "elapsed_ms", "started_at",
		}).AddRow("batch-1", "gpt-5-nano", 2, 2, 1, 1, false, int64(450), int64(520), int64(253_000_000), int64(0), int64(1200), started))
	mock.ExpectQuery("SELECT (.+) FROM batch_items").
		WithArgs("batch-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"item_index", "status", "error_kind", "error_detail", "category", "role", "tier", "years",
			"template", "artifact", "input_tokens", "output_tokens", "cost_picousd", "duration_ms",
		}).
			AddRow(1, "succeeded", "", "", "Technology", "SRE", "mid", 7, "modern", "output/resume_0001.pdf", int64(450), int64(520), int64(253_000_000), int64(900)).
			AddRow(2, "failed", "service_error", "503", "Finance", "Analyst", "junior", 3, "", "", int64(0), int64(0), int64(0), int64(300)))

	repo := &PGRepo{DB: db}
	batch, err := repo.Get(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if batch.TotalCost != pricing.Money(253_000_000) || batch.Elapsed != 1200*time.Millisecond {
		t.Fatalf("unexpected batch %+v", batch)
	}
	if len(batch.Items) != 2 || batch.Items[1].Kind != generation.KindServiceError {
		t.Fatalf("unexpected items %+v", batch.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM batches").WithArgs("missing").WillReturnError(sql.ErrNoRows)
	repo := &PGRepo{DB: db}
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoRoundTrip(t *testing.T) {
	repo := NewMemoryRepo()
	batch := FromReport(sampleReport())
	if err := repo.Save(context.Background(), batch); err != nil {
		t.Fatalf("Save: %v", err)
	}
	batch.Items[0].Role = "mutated"

	got, err := repo.Get(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Items[0].Role != "Data Engineer" {
		t.Fatalf("stored batch shares memory with caller")
	}
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWriteCostLog(t *testing.T) {
	store := local.New(t.TempDir())
	loc, err := WriteCostLog(context.Background(), store, sampleReport())
	if err != nil {
		t.Fatalf("WriteCostLog: %v", err)
	}
	if loc == "" {
		t.Fatalf("expected a location")
	}

	rc, err := store.Open(context.Background(), CostLogKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	raw, _ := io.ReadAll(rc)

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"total_resumes", "total_time_seconds", "total_input_tokens", "total_output_tokens", "total_cost_usd", "avg_cost_per_resume_usd", "per_resume_costs_usd", "input_price_per_million_usd", "output_price_per_million_usd"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("cost log missing %q", key)
		}
	}

	var log CostLog
	if err := json.Unmarshal(raw, &log); err != nil {
		t.Fatalf("decode typed: %v", err)
	}
	if log.TotalResumes != 2 || len(log.PerResumeCostsUSD) != 2 {
		t.Fatalf("unexpected cost log %+v", log)
	}
	if math.Abs(log.TotalCostUSD-0.000506) > 1e-12 || math.Abs(log.AvgCostPerResumeUSD-0.000253) > 1e-12 {
		t.Fatalf("unexpected costs total=%v avg=%v", log.TotalCostUSD, log.AvgCostPerResumeUSD)
	}
	if log.InputPricePerMUSD != 0.10 || log.OutputPricePerMUSD != 0.40 {
		t.Fatalf("unexpected prices %v/%v", log.InputPricePerMUSD, log.OutputPricePerMUSD)
	}
	if log.FailuresByKind["malformed_response"] != 1 || log.FailuresByKind["service_error"] != 0 {
		t.Fatalf("unexpected failures %v", log.FailuresByKind)
	}
}
