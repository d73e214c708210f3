package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"resume-generator/internal/generation"
	"resume-generator/internal/shared/storage/object"
)

const contentTypePDF = "application/pdf"

// Renderer writes resumes as PDFs to an object store.
type Renderer struct {
	store  object.Store
	verify bool
	now    func() time.Time
}

// NewRenderer returns a Renderer saving to store. With verify set, every PDF is
// read back and checked before it is stored.
func NewRenderer(store object.Store, verify bool) *Renderer {
	return &Renderer{store: store, verify: verify, now: time.Now}
}

// FileName returns the storage key of the resume with the given 1-based index.
func FileName(index int) string {
	return fmt.Sprintf("resume_%04d.pdf", index)
}

// Render builds, optionally verifies and stores one resume. It returns the
// artifact location.
func (r *Renderer) Render(ctx context.Context, job generation.RenderJob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	style, err := Lookup(job.Template)
	if err != nil {
		return "", err
	}
	data, err := BuildPDF(job, style, r.now())
	if err != nil {
		return "", err
	}
	if r.verify {
		var title string
		if len(job.Document.Experience) > 0 {
			title = job.Document.Experience[0].Title
		}
		if err := Verify(data, job.Contact.Name, title); err != nil {
			return "", err
		}
	}

	key := FileName(job.Index)
	if _, err := r.store.Put(ctx, key, contentTypePDF, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return r.store.Location(key), nil
}

var _ generation.Renderer = (*Renderer)(nil)
