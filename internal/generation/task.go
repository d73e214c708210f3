package generation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"

	"resume-generator/internal/catalog"
	"resume-generator/internal/contact"
	"resume-generator/internal/shared/metrics"
	"resume-generator/internal/shared/telemetry"
)

var tracer = otel.Tracer("resume-generator/generation")

// Selector picks the content parameters of one request.
type Selector interface {
	Select(rng *rand.Rand) catalog.Selection
}

// RenderJob is everything the render collaborator needs for one resume.
type RenderJob struct {
	Index    int
	Document Document
	Template string
	Contact  contact.Info
}

// Renderer writes one resume and returns where it was stored.
type Renderer interface {
	Render(ctx context.Context, job RenderJob) (string, error)
}

// Limiter throttles remote calls across processes.
type Limiter interface {
	Wait(ctx context.Context) error
}

// task is one unit of work: select, generate, render.
type task struct {
	index     int
	rng       *rand.Rand
	selector  Selector
	generator Generator
	limiter   Limiter
	renderer  Renderer
	renderSem *semaphore.Weighted
	templates []string
}

func (t task) run(ctx context.Context) Outcome {
	started := time.Now()
	sel := t.selector.Select(t.rng)
	req := NewRequest(t.index, sel)

	// Draw render inputs up front so the random stream of a task does not
	// depend on whether generation succeeded.
	var template string
	if len(t.templates) > 0 {
		template = t.templates[t.rng.IntN(len(t.templates))]
	}
	contactSeed := t.rng.Uint64()

	ctx, span := tracer.Start(ctx, "generation.task")
	defer span.End()
	span.SetAttributes(
		attribute.Int("task.index", t.index),
		attribute.String("task.category", sel.Category),
		attribute.String("task.role", sel.Role),
		attribute.String("task.tier", string(sel.Tier)),
		attribute.String("task.prompt", req.Prompt()),
	)

	out := t.attempt(ctx, req, template, contactSeed)
	out.Index = t.index
	out.Category = sel.Category
	out.Role = sel.Role
	out.Tier = sel.Tier
	out.Years = sel.Years
	if out.Template == "" && out.Succeeded() {
		out.Template = template
	}
	out.Duration = time.Since(started)

	if out.Failure != nil {
		span.SetStatus(codes.Error, string(out.Failure.Kind))
	}
	return out
}

// attempt generates and renders one resume. A panic in either collaborator
// becomes a failure of the stage that raised it.
func (t task) attempt(ctx context.Context, req Request, template string, contactSeed uint64) (out Outcome) {
	var generated Outcome
	kind := KindServiceError
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("task.panic", map[string]any{
				"index": t.index,
				"stage": string(kind),
				"panic": fmt.Sprint(r),
			})
			out = lost(generated, kind, fmt.Sprintf("panic: %v", r))
		}
	}()

	generated = t.generate(ctx, req)
	if !generated.Succeeded() && generated.Failure == nil {
		generated = lost(generated, KindMalformedResponse, "generator returned no document")
	}
	if !generated.Succeeded() || t.renderer == nil {
		return generated
	}
	kind = KindRenderError
	return t.render(ctx, generated, template, contactSeed)
}

func (t task) generate(ctx context.Context, req Request) Outcome {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return failure(KindServiceError, "rate limiter: "+err.Error())
		}
	}
	return t.generator.Generate(ctx, req)
}

func (t task) render(ctx context.Context, out Outcome, template string, contactSeed uint64) Outcome {
	if t.renderSem != nil {
		if err := t.renderSem.Acquire(ctx, 1); err != nil {
			return lost(out, KindRenderError, err.Error())
		}
		defer t.renderSem.Release(1)
	}

	info := contact.Generate(contactSeed)
	doc := *out.Document
	doc.Name = info.Name

	started := time.Now()
	artifact, err := t.renderer.Render(ctx, RenderJob{
		Index:    t.index,
		Document: doc,
		Template: template,
		Contact:  info,
	})
	metrics.ObserveRender(time.Since(started))
	if err != nil {
		telemetry.Error("render.failed", map[string]any{
			"index":    t.index,
			"template": template,
			"error":    err.Error(),
		})
		return lost(out, KindRenderError, err.Error())
	}
	out.Document = &doc
	out.Template = template
	out.Artifact = artifact
	return out
}

// lost converts a success into a failure that keeps its billed tokens.
func lost(out Outcome, kind ErrorKind, detail string) Outcome {
	f := failure(kind, detail)
	f.InputTokens, f.OutputTokens = out.InputTokens, out.OutputTokens
	return f
}
