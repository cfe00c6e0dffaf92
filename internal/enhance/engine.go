// Package enhance applies instruction-driven transformations to drafts.
// The default implementation is a rule engine: the instruction is matched
// case-insensitively against an ordered rule list and every matching rule is
// applied in sequence. A language-model backend can be swapped in behind
// the same Backend interface without touching callers.
package enhance

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"social-campaign-platform/internal/platform"
	"social-campaign-platform/models"
)

// Request carries one enhancement invocation. AllDrafts is optional; it is
// only consulted by the cross-platform rule and holds the session's full
// draft map keyed by platform.
type Request struct {
	Draft       models.Draft
	Instruction string
	Platform    platform.ID
	AllDrafts   map[platform.ID]models.Draft
}

// Result of an enhancement. AppliedRules is empty when no rule understood
// the instruction; that is the expected "I don't understand that request"
// outcome, not an error. FanoutDrafts is non-nil only when a rule touched
// other platforms' drafts.
type Result struct {
	Draft        models.Draft
	AppliedRules []string
	FanoutDrafts map[platform.ID]models.Draft
}

// NoOp reports whether the enhancement left the draft untouched.
func (r Result) NoOp() bool {
	return len(r.AppliedRules) == 0
}

// Backend enhances a draft according to a natural-language instruction.
// Implementations must return a new draft and never mutate the input.
type Backend interface {
	Enhance(ctx context.Context, req Request) (Result, error)
}

// Context is passed to rules while they run.
type Context struct {
	Platform platform.ID
	Rand     *rand.Rand

	// Fanout collects cross-platform edits. Nil unless a rule writes to it.
	Fanout map[platform.ID]models.Draft
}

// Rule is one instruction handler: a predicate over the (lowercased)
// instruction plus a pure transform of the draft.
type Rule interface {
	Name() string
	Matches(instruction string) bool
	Apply(rc *Context, d models.Draft) models.Draft
}

// RuleEngine is the default Backend: a fixed, ordered rule list.
type RuleEngine struct {
	rules []Rule
	rng   *rand.Rand
}

// NewRuleEngine builds the engine with the standard rule set. rng drives
// the call-to-action selection; pass a seeded source in tests for
// deterministic output. A nil rng falls back to a time-seeded one.
func NewRuleEngine(rng *rand.Rand) *RuleEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RuleEngine{
		rules: standardRules(),
		rng:   rng,
	}
}

// Enhance applies every matching rule in order and returns the resulting
// draft. A blank instruction is a no-op. The input draft is never mutated.
func (e *RuleEngine) Enhance(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	result := Result{Draft: req.Draft.Clone(), AppliedRules: []string{}}

	instruction := strings.ToLower(strings.TrimSpace(req.Instruction))
	if instruction == "" {
		return result, nil
	}

	rc := &Context{
		Platform: req.Platform,
		Rand:     e.rng,
	}

	for _, rule := range e.rules {
		if !rule.Matches(instruction) {
			continue
		}
		// cross-platform rules need the rest of the session's drafts
		if rc.Fanout == nil && req.AllDrafts != nil && rule.Name() == ruleNameAllPlatforms {
			rc.Fanout = make(map[platform.ID]models.Draft, len(req.AllDrafts))
			for id, d := range req.AllDrafts {
				rc.Fanout[id] = d.Clone()
			}
		}
		result.Draft = rule.Apply(rc, result.Draft)
		result.AppliedRules = append(result.AppliedRules, rule.Name())
	}

	// Rules after the cross-platform one keep editing result.Draft, so the
	// fanout copy of the current platform must be refreshed before callers
	// merge the map back into the session.
	if rc.Fanout != nil {
		rc.Fanout[req.Platform] = result.Draft.Clone()
	}

	result.FanoutDrafts = rc.Fanout
	return result, nil
}
