package generation

import (
	"context"
	"errors"

	"resume-generator/internal/llm"
)

// Generator turns one Request into one Outcome. Implementations never return
// errors; every problem is classified into the Outcome.
type Generator interface {
	Generate(ctx context.Context, req Request) Outcome
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) Outcome

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) Outcome {
	return f(ctx, req)
}

// LLMGenerator issues a single JSON-object completion per request and validates
// the payload as a Document.
type LLMGenerator struct {
	client llm.Client
}

// NewGenerator constructs a Generator backed by client.
func NewGenerator(client llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

// Generate performs the remote call, then parses and classifies the result.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) Outcome {
	resp, err := g.client.Complete(ctx, llm.Request{Messages: req.Messages, JSONObject: true})
	if err != nil {
		if errors.Is(err, llm.ErrEmptyContent) {
			return failure(KindMalformedResponse, err.Error())
		}
		return failure(KindServiceError, err.Error())
	}
	in, out := tokens(resp.Usage)
	doc, err := ParseDocument(resp.Content)
	if err != nil {
		o := failure(KindMalformedResponse, err.Error())
		o.InputTokens, o.OutputTokens = in, out
		return o
	}
	return success(doc, in, out)
}

func tokens(u llm.Usage) (uint64, uint64) {
	in, out := u.PromptTokens, u.CompletionTokens
	if in < 0 {
		in = 0
	}
	if out < 0 {
		out = 0
	}
	return uint64(in), uint64(out)
}

var _ Generator = (*LLMGenerator)(nil)
