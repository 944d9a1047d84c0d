// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate drives the dependency-ordered generation of the five
// paper sections and the terminal coherence pass. Section state lives in an
// explicit per-request state machine so ordering, cancellation, and failure
// semantics are inspectable rather than implied by call nesting.
package generate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// Generator is the external text generation service. All three calls are
// opaque and potentially slow.
type Generator interface {
	// Generate produces a section's full text from its composed context,
	// the user requirement, and the condensed summaries of its direct
	// predecessors (in dependency order).
	Generate(ctx context.Context, contextText, requirement string, predecessorSummaries []string) (string, error)

	// Summarize condenses a completed section's full text to roughly
	// lengthHint words.
	Summarize(ctx context.Context, fullText string, lengthHint int) (string, error)

	// CoherencePass rewrites the concatenated sections into the final
	// document.
	CoherencePass(ctx context.Context, combined string) (string, error)
}

// dependencies is the fixed generation DAG. Predecessor lists are ordered;
// that order is the order condensed summaries are passed to Generate.
var dependencies = map[types.TargetSection][]types.TargetSection{
	types.SectionIntroduction: nil,
	types.SectionRelatedWork:  {types.SectionIntroduction},
	types.SectionMethods:      {types.SectionIntroduction, types.SectionRelatedWork},
	types.SectionExperiments:  {types.SectionMethods},
	types.SectionConclusion: {
		types.SectionIntroduction, types.SectionRelatedWork,
		types.SectionMethods, types.SectionExperiments,
	},
}

// Dependencies returns a section's direct predecessors in the fixed DAG.
func Dependencies(section types.TargetSection) []types.TargetSection {
	return dependencies[section]
}

// StageError identifies the sequential-phase step that failed. Any stage
// failure is fatal to the request; no partial document is returned.
type StageError struct {
	// Section is the failing section, or empty for the coherence pass.
	Section types.TargetSection

	// Op names the failing call: generate, summarize, or coherence_pass.
	Op string

	Err error
}

func (e *StageError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("stage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("stage %s failed for section %s: %v", e.Op, e.Section, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Orchestrator runs the sequential generation phase. The five sections are
// generated strictly serially in document order even where the DAG alone
// would permit overlap; serializing bounds context drift between stages.
type Orchestrator struct {
	gen Generator
	cfg types.GenerationConfig
	log *zap.Logger
}

// NewOrchestrator creates an Orchestrator. A nil logger disables logging.
func NewOrchestrator(gen Generator, cfg types.GenerationConfig, log *zap.Logger) *Orchestrator {
	if cfg.SummaryLengthHint <= 0 {
		cfg.SummaryLengthHint = 150
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{gen: gen, cfg: cfg, log: log}
}

// Run generates all five sections and applies the coherence pass, returning
// the final document. On any stage failure it returns a StageError naming
// the stage and no document.
func (o *Orchestrator) Run(ctx context.Context, contexts map[types.TargetSection]types.SectionContext, requirement string) (string, error) {
	states := make(map[types.TargetSection]*types.GenerationState, len(dependencies))
	for _, section := range types.AllTargetSections() {
		states[section] = &types.GenerationState{Section: section, Status: types.StatusPending}
	}

	for _, section := range types.AllTargetSections() {
		if err := o.generateSection(ctx, states, contexts[section], requirement, section); err != nil {
			return "", err
		}
	}

	o.log.Info("all sections done, running coherence pass")
	final, err := o.callCoherence(ctx, concatSections(states))
	if err != nil {
		return "", &StageError{Op: "coherence_pass", Err: err}
	}
	return final, nil
}

// generateSection advances one section through pending → generating → done.
func (o *Orchestrator) generateSection(
	ctx context.Context,
	states map[types.TargetSection]*types.GenerationState,
	sectionCtx types.SectionContext,
	requirement string,
	section types.TargetSection,
) error {
	state := states[section]

	// Gate the pending → generating transition on every predecessor being
	// done. The serial walk makes this hold; the check keeps the state
	// machine honest if the walk ever changes.
	summaries := make([]string, 0, len(dependencies[section]))
	for _, dep := range dependencies[section] {
		depState := states[dep]
		if depState.Status != types.StatusDone {
			return &StageError{Section: section, Op: "generate",
				Err: fmt.Errorf("predecessor %s is %s, want done", dep, depState.Status)}
		}
		summaries = append(summaries, depState.CondensedSummary)
	}
	state.Status = types.StatusGenerating
	o.log.Info("generating section", zap.String("section", string(section)))

	fullText, err := o.callGenerate(ctx, sectionCtx.Text, requirement, summaries)
	if err != nil {
		return &StageError{Section: section, Op: "generate", Err: err}
	}
	state.FullText = fullText

	condensed, err := o.callSummarize(ctx, fullText)
	if err != nil {
		return &StageError{Section: section, Op: "summarize", Err: err}
	}
	state.CondensedSummary = condensed
	state.Status = types.StatusDone

	o.log.Info("section done",
		zap.String("section", string(section)),
		zap.Int("full_text_len", len(fullText)),
		zap.Int("condensed_len", len(condensed)))
	return nil
}

func (o *Orchestrator) callGenerate(ctx context.Context, contextText, requirement string, summaries []string) (string, error) {
	ctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.gen.Generate(ctx, contextText, requirement, summaries)
}

func (o *Orchestrator) callSummarize(ctx context.Context, fullText string) (string, error) {
	ctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.gen.Summarize(ctx, fullText, o.cfg.SummaryLengthHint)
}

func (o *Orchestrator) callCoherence(ctx context.Context, combined string) (string, error) {
	ctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.gen.CoherencePass(ctx, combined)
}

func (o *Orchestrator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.StageTimeout > 0 {
		return context.WithTimeout(ctx, o.cfg.StageTimeout)
	}
	return context.WithCancel(ctx)
}

// concatSections joins the five full texts in document order for the
// coherence pass.
func concatSections(states map[types.TargetSection]*types.GenerationState) string {
	var b strings.Builder
	for _, section := range types.AllTargetSections() {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", section.Title(), states[section].FullText)
	}
	return b.String()
}
