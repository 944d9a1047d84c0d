// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose builds one structured context per target section from
// retrieved summaries, pattern insights, and anchor excerpts. Composition
// is a pure function of its inputs and the mapping table; the set and
// order of included material is the contract, the exact formatting is not.
package compose

import (
	"fmt"
	"strings"

	"github.com/pdiddy/paper-engine/internal/mapping"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// topSummariesPerCategory bounds how many ranked summaries each category
// contributes to a section's context.
const topSummariesPerCategory = 3

// Composer assembles SectionContexts according to the mapping table.
type Composer struct {
	table mapping.Table
}

// NewComposer creates a Composer over the given table.
func NewComposer(table mapping.Table) *Composer {
	return &Composer{table: table}
}

// Compose builds the context for every target section. It never fails:
// empty buckets, absent insights, and missing excerpts all degrade to
// header-only blocks.
func (c *Composer) Compose(
	buckets map[types.Category]types.CategoryBucket,
	insights map[types.Category]types.PatternInsight,
	excerpts []types.AnchorExcerpt,
) map[types.TargetSection]types.SectionContext {
	contexts := make(map[types.TargetSection]types.SectionContext, len(c.table.Plans))
	for _, plan := range c.table.Plans {
		contexts[plan.Section] = types.SectionContext{
			Section: plan.Section,
			Text:    c.composeSection(plan, buckets, insights, excerpts),
		}
	}
	return contexts
}

// composeSection renders one section's context: per mapped category, in
// plan order, the category's top-ranked summaries followed by its trend
// statements; then, for anchored sections only, the anchor paper's full
// section text.
func (c *Composer) composeSection(
	plan mapping.SectionPlan,
	buckets map[types.Category]types.CategoryBucket,
	insights map[types.Category]types.PatternInsight,
	excerpts []types.AnchorExcerpt,
) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Context: %s\n\n", plan.Section.Title())

	for _, cat := range plan.Categories {
		fmt.Fprintf(&b, "## %s summaries\n\n", cat)

		records := buckets[cat].Records
		if len(records) > topSummariesPerCategory {
			records = records[:topSummariesPerCategory]
		}
		for i, rec := range records {
			fmt.Fprintf(&b, "**Summary %d** (paper %s):\n%s\n\n", i+1, rec.PaperID, rec.Text)
		}

		insight, ok := insights[cat]
		if !ok || len(insight.Trends) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s trends\n\n", cat)
		for _, trend := range insight.Trends {
			fmt.Fprintf(&b, "- %s\n", trend)
		}
		b.WriteString("\n")
	}

	if plan.NeedsAnchor {
		writeExcerpt(&b, plan.Section, excerpts)
	}

	return b.String()
}

// writeExcerpt appends the anchor paper's full section fragments, in chunk
// order, when an excerpt exists for the section.
func writeExcerpt(b *strings.Builder, section types.TargetSection, excerpts []types.AnchorExcerpt) {
	b.WriteString("## Source excerpt\n\n")
	for _, ex := range excerpts {
		fragments, ok := ex.Sections[section]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "**Paper %s, %s section**:\n\n", ex.PaperID, section.Title())
		for i, frag := range fragments {
			fmt.Fprintf(b, "Fragment %d: %s\n\n", i+1, frag)
		}
		return
	}
}
