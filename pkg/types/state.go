// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GenerationStatus tracks a section's progress through the sequential
// generation state machine.
type GenerationStatus string

const (
	StatusPending    GenerationStatus = "pending"
	StatusGenerating GenerationStatus = "generating"
	StatusDone       GenerationStatus = "done"
)

// GenerationState is the per-section record the orchestrator mutates as a
// request progresses. One instance exists per target section per request;
// nothing outside the orchestrator writes it.
type GenerationState struct {
	// Section identifies the target section.
	Section TargetSection `json:"section" yaml:"section"`

	// Status is the section's position in the state machine.
	Status GenerationStatus `json:"status" yaml:"status"`

	// FullText is the generated section body. Empty until Status is done.
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// CondensedSummary is the short digest derived from FullText once
	// generation completes. Successor sections receive this, never FullText.
	CondensedSummary string `json:"condensed_summary,omitempty" yaml:"condensed_summary,omitempty"`
}
