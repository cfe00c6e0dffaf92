package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"social-campaign-platform/internal/schedule"
)

// Step indices. The flow is linear; JumpTo allows direct navigation as long
// as every gate between the current step and the target passes.
const (
	StepChannelSelection = iota
	StepContentSelection
	StepContentEditing
	StepSchedulingApproval
	StepSummary
)

var (
	ErrAtFirstStep = errors.New("already at the first step")
	ErrAtFinalStep = errors.New("already at the final step")
	ErrInvalidStep = errors.New("step index out of range")

	// ErrNotReadyToLaunch rejects launch attempts before the summary step.
	ErrNotReadyToLaunch = errors.New("session has not reached the summary step")
)

// ValidationError carries per-field messages for a failed gate. It is
// recoverable and rendered inline next to the offending fields; it never
// crosses the HTTP layer as a 5xx.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// Step describes one wizard state: its name and the gate that must pass
// before the flow may move beyond it.
type Step struct {
	Name     string
	Validate func(*Session) map[string]string
}

// Steps is the machine as data, in flow order.
var Steps = []Step{
	{
		Name: "channel_selection",
		Validate: func(s *Session) map[string]string {
			if len(s.SelectedPlatforms) == 0 {
				return map[string]string{"platforms": "select at least one platform"}
			}
			return nil
		},
	},
	{
		Name: "content_selection",
		Validate: func(s *Session) map[string]string {
			if s.SelectedIdea == nil && !s.FromScratch {
				return map[string]string{"idea": "select a content idea or choose to start from scratch"}
			}
			return nil
		},
	},
	{
		Name: "content_editing",
		Validate: func(s *Session) map[string]string {
			errs := map[string]string{}
			for _, id := range s.SelectedPlatforms {
				draft, ok := s.Drafts[id]
				if !ok || strings.TrimSpace(draft.Title) == "" {
					errs[fmt.Sprintf("drafts.%s.title", id)] = "title is required"
				}
			}
			if len(errs) == 0 {
				return nil
			}
			return errs
		},
	},
	{
		Name: "scheduling_approval",
		Validate: func(s *Session) map[string]string {
			errs := map[string]string{}
			if !s.Schedule.AllApproved() {
				errs["schedule"] = "all schedule entries must be approved"
			}
			if cols := schedule.Collisions(s.Schedule.Entries); len(cols) > 0 {
				errs["schedule.collisions"] = fmt.Sprintf(
					"%d entries share a platform and time slot", len(cols)*2)
			}
			if len(errs) == 0 {
				return nil
			}
			return errs
		},
	},
	{
		Name:     "summary",
		Validate: func(*Session) map[string]string { return nil },
	},
}

// CurrentStep returns the descriptor for the session's current step.
func (s *Session) CurrentStep() Step {
	return Steps[s.StepIndex]
}

// Advance moves to the next step if the current gate passes. On failure the
// field messages are stored on the session and returned; the step index does
// not move.
func (s *Session) Advance() error {
	if s.StepIndex >= len(Steps)-1 {
		return ErrAtFinalStep
	}
	if fields := Steps[s.StepIndex].Validate(s); fields != nil {
		s.ValidationErrors = fields
		return &ValidationError{Fields: fields}
	}
	s.ValidationErrors = nil
	s.StepIndex++
	s.touch()
	return nil
}

// Retreat moves one step back. Always permitted except at the first step,
// and never discards data already entered.
func (s *Session) Retreat() error {
	if s.StepIndex == 0 {
		return ErrAtFirstStep
	}
	s.ValidationErrors = nil
	s.StepIndex--
	s.touch()
	return nil
}

// JumpTo navigates directly to target. Jumping backward is always allowed;
// jumping forward validates every gate along the way.
func (s *Session) JumpTo(target int) error {
	if target < 0 || target >= len(Steps) {
		return ErrInvalidStep
	}
	for i := s.StepIndex; i < target; i++ {
		if fields := Steps[i].Validate(s); fields != nil {
			s.ValidationErrors = fields
			return &ValidationError{Fields: fields}
		}
	}
	s.ValidationErrors = nil
	s.StepIndex = target
	s.touch()
	return nil
}

// CanLaunch reports whether the session is at the summary step with every
// prior gate satisfied.
func (s *Session) CanLaunch() error {
	if s.StepIndex != StepSummary {
		return ErrNotReadyToLaunch
	}
	return nil
}
