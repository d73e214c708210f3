package generation

import (
	"strings"
	"time"

	"resume-generator/internal/catalog"
	"resume-generator/internal/llm"
	"resume-generator/internal/pricing"
)

// Request is the immutable input of one generation call.
type Request struct {
	Index    int
	Category string
	Role     string
	Tier     catalog.Tier
	Years    int
	Messages []llm.Message
}

// NewRequest builds the prompt for a content selection.
func NewRequest(index int, sel catalog.Selection) Request {
	return Request{
		Index:    index,
		Category: sel.Category,
		Role:     sel.Role,
		Tier:     sel.Tier,
		Years:    sel.Years,
		Messages: llm.BuildResumePrompt(string(sel.Tier), sel.Category, sel.Role, sel.Years),
	}
}

// Prompt returns the user prompt text.
func (r Request) Prompt() string {
	var parts []string
	for _, m := range r.Messages {
		if m.Role == "user" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// ErrorKind classifies a per-item failure.
type ErrorKind string

const (
	KindServiceError      ErrorKind = "service_error"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindRenderError       ErrorKind = "render_error"
)

// Kinds lists every failure kind in display order.
func Kinds() []ErrorKind {
	return []ErrorKind{KindServiceError, KindMalformedResponse, KindRenderError}
}

// Failure is a classified per-item error.
type Failure struct {
	Kind   ErrorKind
	Detail string
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Detail
}

// Outcome is the terminal result of one task. Exactly one of Document and
// Failure is set. A Failure may still carry token counts when the service
// billed the call before the item was lost.
type Outcome struct {
	Index        int
	Document     *Document
	Failure      *Failure
	InputTokens  uint64
	OutputTokens uint64

	Category string
	Role     string
	Tier     catalog.Tier
	Years    int
	Template string
	Artifact string
	Duration time.Duration
}

// Succeeded reports whether the outcome holds a document.
func (o Outcome) Succeeded() bool {
	return o.Failure == nil && o.Document != nil
}

// Cost prices the outcome's token usage.
func (o Outcome) Cost(model pricing.Model) pricing.Money {
	return model.Cost(o.InputTokens, o.OutputTokens)
}

func success(doc Document, in, out uint64) Outcome {
	return Outcome{Document: &doc, InputTokens: in, OutputTokens: out}
}

func failure(kind ErrorKind, detail string) Outcome {
	return Outcome{Failure: &Failure{Kind: kind, Detail: detail}}
}
