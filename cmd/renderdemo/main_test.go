package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"resume-generator/internal/contact"
	"resume-generator/internal/render"
	localstore "resume-generator/internal/shared/storage/object/local"
)

func TestRenderAllWritesEveryTemplate(t *testing.T) {
	dir := t.TempDir()
	info := contact.Generate(3)

	locations, err := renderAll(context.Background(), localstore.New(dir), sampleDocument(), info)
	if err != nil {
		t.Fatalf("renderAll: %v", err)
	}
	if len(locations) != len(render.Templates()) {
		t.Fatalf("locations = %v", locations)
	}
	for i := range locations {
		data, err := os.ReadFile(filepath.Join(dir, render.FileName(i+1)))
		if err != nil {
			t.Fatalf("read pdf %d: %v", i, err)
		}
		meta, err := render.ReadMetadata(data)
		if err != nil {
			t.Fatalf("ReadMetadata: %v", err)
		}
		if meta.Title != "Resume - "+info.Name {
			t.Fatalf("title = %q", meta.Title)
		}
	}
}

func TestSampleDocumentIsValid(t *testing.T) {
	doc := sampleDocument()
	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
