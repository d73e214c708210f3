package generation

import (
	"context"
	"testing"

	"resume-generator/internal/catalog"
	"resume-generator/internal/llm"
	"resume-generator/internal/pricing"
)

const validDocJSON = `{
  "summary": "Backend engineer with a record of shipping reliable services.",
  "skills": ["Go", "PostgreSQL", "Kubernetes"],
  "experience": [
    {
      "title": "Software Engineer",
      "company": "Apex Solutions",
      "location": "Austin, TX",
      "start_date": "January 2021",
      "end_date": "Present",
      "bullets": ["Led migration of billing to Go, cutting latency by 40%"]
    }
  ],
  "education": [
    {"degree": "Bachelor of Science in Computer Science", "institution": "State University", "year": "2020"}
  ],
  "certifications": ["Certified Kubernetes Administrator (CNCF)"]
}`

// clientFunc adapts a function to llm.Client.
type clientFunc func(ctx context.Context, req llm.Request) (llm.Completion, error)

func (f clientFunc) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	return f(ctx, req)
}

func okCompletion(in, out int) llm.Completion {
	return llm.Completion{
		Model:   "gpt-5-nano",
		Content: validDocJSON,
		Usage:   llm.Usage{PromptTokens: in, CompletionTokens: out},
	}
}

func testSelector(t *testing.T) *catalog.Registry {
	t.Helper()
	reg, err := catalog.Load("", nil)
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	return reg
}

func testCosts(t *testing.T, in, out float64) pricing.Model {
	t.Helper()
	rates, err := pricing.NewRates(in, out)
	if err != nil {
		t.Fatalf("NewRates: %v", err)
	}
	return pricing.NewModel(rates)
}

func newTestScheduler(t *testing.T, opts Options) *Scheduler {
	t.Helper()
	if opts.Selector == nil {
		opts.Selector = testSelector(t)
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	s, err := NewScheduler(opts)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}
