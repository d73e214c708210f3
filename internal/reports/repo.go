package reports

import "context"

// Repo persists batch reports.
type Repo interface {
	Save(ctx context.Context, batch Batch) error
	Get(ctx context.Context, id string) (Batch, error)
}
