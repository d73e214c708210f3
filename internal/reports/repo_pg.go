package reports

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"resume-generator/internal/generation"
	"resume-generator/internal/pricing"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Save inserts the batch row and its items in one transaction.
func (r *PGRepo) Save(ctx context.Context, batch Batch) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	const insertBatch = `
INSERT INTO batches (
    id, model, requested, concurrency, succeeded, failed, cancelled,
    input_tokens, output_tokens, total_cost_picousd, wasted_cost_picousd, elapsed_ms, started_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err = tx.ExecContext(ctx, insertBatch,
		batch.ID,
		batch.Model,
		batch.Requested,
		batch.Concurrency,
		batch.Succeeded,
		batch.Failed,
		batch.Cancelled,
		int64(batch.InputTokens),
		int64(batch.OutputTokens),
		int64(batch.TotalCost),
		int64(batch.WastedCost),
		batch.Elapsed.Milliseconds(),
		batch.StartedAt,
	); err != nil {
		return err
	}

	const insertItem = `
INSERT INTO batch_items (
    batch_id, seq, item_index, status, error_kind, error_detail, category, role, tier, years,
    template, artifact, input_tokens, output_tokens, cost_picousd, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	for seq, item := range batch.Items {
		if _, err = tx.ExecContext(ctx, insertItem,
			batch.ID,
			seq,
			item.Index,
			item.Status,
			nullString(string(item.Kind)),
			nullString(item.Detail),
			item.Category,
			item.Role,
			item.Tier,
			item.Years,
			nullString(item.Template),
			nullString(item.Artifact),
			int64(item.InputTokens),
			int64(item.OutputTokens),
			int64(item.Cost),
			item.Duration.Milliseconds(),
		); err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

// Get loads a batch and its items in completion order.
func (r *PGRepo) Get(ctx context.Context, id string) (Batch, error) {
	const query = `
SELECT id, model, requested, concurrency, succeeded, failed, cancelled,
       input_tokens, output_tokens, total_cost_picousd, wasted_cost_picousd, elapsed_ms, started_at
FROM batches
WHERE id = $1
LIMIT 1`
	var (
		b             Batch
		inTok, outTok int64
		total, wasted int64
		elapsedMS     int64
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&b.ID,
		&b.Model,
		&b.Requested,
		&b.Concurrency,
		&b.Succeeded,
		&b.Failed,
		&b.Cancelled,
		&inTok,
		&outTok,
		&total,
		&wasted,
		&elapsedMS,
		&b.StartedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Batch{}, ErrNotFound
		}
		return Batch{}, err
	}
	b.InputTokens = uint64(inTok)
	b.OutputTokens = uint64(outTok)
	b.TotalCost = pricing.Money(total)
	b.WastedCost = pricing.Money(wasted)
	b.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	items, err := r.items(ctx, id)
	if err != nil {
		return Batch{}, err
	}
	b.Items = items
	return b, nil
}

func (r *PGRepo) items(ctx context.Context, batchID string) ([]generation.Item, error) {
	const query = `
SELECT item_index, status, COALESCE(error_kind, ''), COALESCE(error_detail, ''), category, role, tier, years,
       COALESCE(template, ''), COALESCE(artifact, ''), input_tokens, output_tokens, cost_picousd, duration_ms
FROM batch_items
WHERE batch_id = $1
ORDER BY seq`
	rows, err := r.DB.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []generation.Item
	for rows.Next() {
		var (
			item                     generation.Item
			kind                     string
			inTok, outTok, cost, dur int64
		)
		if err := rows.Scan(
			&item.Index,
			&item.Status,
			&kind,
			&item.Detail,
			&item.Category,
			&item.Role,
			&item.Tier,
			&item.Years,
			&item.Template,
			&item.Artifact,
			&inTok,
			&outTok,
			&cost,
			&dur,
		); err != nil {
			return nil, err
		}
		item.Kind = generation.ErrorKind(kind)
		item.InputTokens = uint64(inTok)
		item.OutputTokens = uint64(outTok)
		item.Cost = pricing.Money(cost)
		item.Duration = time.Duration(dur) * time.Millisecond
		out = append(out, item)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
