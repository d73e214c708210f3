package reports

import (
	"context"
	"sync"

	"resume-generator/internal/generation"
)

// MemoryRepo keeps batches in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Batch
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Batch)}
}

// Save stores a copy of batch.
func (r *MemoryRepo) Save(ctx context.Context, batch Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batch.Items = append([]generation.Item(nil), batch.Items...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[batch.ID] = batch
	return nil
}

// Get returns a stored batch.
func (r *MemoryRepo) Get(ctx context.Context, id string) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	batch, ok := r.byID[id]
	if !ok {
		return Batch{}, ErrNotFound
	}
	batch.Items = append([]generation.Item(nil), batch.Items...)
	return batch, nil
}

var _ Repo = (*MemoryRepo)(nil)
