// Package wizard implements the campaign creation flow: a session-scoped
// draft store plus a linear state machine with per-step validation gates.
// One Session belongs to one user session; there is no cross-session
// sharing, and all mutation goes through the session's methods.
package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"social-campaign-platform/internal/platform"
	"social-campaign-platform/internal/schedule"
	"social-campaign-platform/internal/template"
	"social-campaign-platform/models"
)

// ErrSessionNotFound is returned by session stores when an id resolves to
// nothing, either because it never existed or because the TTL expired.
var ErrSessionNotFound = errors.New("wizard session not found")

// Session aggregates all state for one run through the creation flow. It is
// serialized as JSON into Redis between requests; every field the flow needs
// must round-trip through encoding/json.
type Session struct {
	ID                string                         `json:"id"`
	UserID            string                         `json:"user_id"`
	SelectedPlatforms []platform.ID                  `json:"selected_platforms"`
	SelectedIdea      *models.ContentIdea            `json:"selected_idea,omitempty"`
	FromScratch       bool                           `json:"from_scratch"`
	Drafts            map[platform.ID]models.Draft   `json:"drafts"`
	StepIndex         int                            `json:"current_step_index"`
	ValidationErrors  map[string]string              `json:"validation_errors,omitempty"`
	Schedule          schedule.Set                   `json:"schedule_entries"`
	CreatedAt         time.Time                      `json:"created_at"`
	UpdatedAt         time.Time                      `json:"updated_at"`
}

// NewSession creates a fresh session at the channel-selection step.
func NewSession(userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:                uuid.NewString(),
		UserID:            userID,
		SelectedPlatforms: []platform.ID{},
		Drafts:            map[platform.ID]models.Draft{},
		StepIndex:         StepChannelSelection,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// IsSelected reports whether id is in the selected platform set.
func (s *Session) IsSelected(id platform.ID) bool {
	for _, p := range s.SelectedPlatforms {
		if p == id {
			return true
		}
	}
	return false
}

// SetPlatforms replaces the platform selection and keeps the draft store in
// sync: drafts for deselected platforms are removed, newly selected
// platforms get a draft seeded from the selected idea (or an empty one when
// working from scratch). The store's key set always equals the selection
// after this returns.
func (s *Session) SetPlatforms(ids []platform.ID) error {
	selection := make([]platform.ID, 0, len(ids))
	want := make(map[platform.ID]bool, len(ids))
	for _, id := range ids {
		if _, err := platform.Lookup(id); err != nil {
			return err
		}
		if want[id] {
			continue // selection is a set
		}
		want[id] = true
		selection = append(selection, id)
	}

	for id := range s.Drafts {
		if !want[id] {
			delete(s.Drafts, id)
		}
	}

	s.SelectedPlatforms = selection

	for _, id := range selection {
		if _, ok := s.Drafts[id]; ok {
			continue
		}
		if err := s.seedDraft(id); err != nil {
			return err
		}
	}

	s.touch()
	return nil
}

// seedDraft creates the draft for a newly selected platform.
func (s *Session) seedDraft(id platform.ID) error {
	if s.SelectedIdea != nil {
		draft, err := template.Expand(*s.SelectedIdea, id)
		if err != nil {
			return err
		}
		s.Drafts[id] = draft
		return nil
	}
	s.Drafts[id] = models.NewDraft()
	return nil
}

// SelectIdea picks the content idea that seeds every selected platform's
// draft. Existing drafts are replaced by freshly expanded ones.
func (s *Session) SelectIdea(idea models.ContentIdea) error {
	s.SelectedIdea = &idea
	s.FromScratch = false

	for _, id := range s.SelectedPlatforms {
		draft, err := template.Expand(idea, id)
		if err != nil {
			return err
		}
		s.Drafts[id] = draft
	}

	s.touch()
	return nil
}

// SkipIdea marks the session as built from scratch: no idea, empty drafts.
func (s *Session) SkipIdea() {
	s.SelectedIdea = nil
	s.FromScratch = true
	for _, id := range s.SelectedPlatforms {
		if _, ok := s.Drafts[id]; !ok {
			s.Drafts[id] = models.NewDraft()
		}
	}
	s.touch()
}

// InitDraft ensures a draft exists for the platform. Idempotent.
func (s *Session) InitDraft(id platform.ID) error {
	if _, err := platform.Lookup(id); err != nil {
		return err
	}
	if _, ok := s.Drafts[id]; ok {
		return nil
	}
	if err := s.seedDraft(id); err != nil {
		return err
	}
	s.touch()
	return nil
}

// UpdateField replaces a single field on one platform's draft. Edits never
// fan out to other platforms. A missing draft is initialized first rather
// than silently dropping the edit.
func (s *Session) UpdateField(id platform.ID, field, value string) error {
	if err := s.InitDraft(id); err != nil {
		return err
	}

	draft := s.Drafts[id]

	switch field {
	case "title":
		draft.Title = value
	case "description":
		cap, err := platform.Lookup(id)
		if err != nil {
			return err
		}
		if len([]rune(value)) > cap.MaxDescriptionLen {
			return &ValidationError{Fields: map[string]string{
				"description": fmt.Sprintf("description exceeds the %s limit of %d characters", cap.DisplayName, cap.MaxDescriptionLen),
			}}
		}
		draft.Description = value
	default:
		if len(field) > len("settings.") && field[:len("settings.")] == "settings." {
			draft.Settings[field[len("settings."):]] = value
		} else {
			return &ValidationError{Fields: map[string]string{
				"field": fmt.Sprintf("unknown draft field %q", field),
			}}
		}
	}

	s.Drafts[id] = draft
	s.touch()
	return nil
}

// AddHashtag appends tag with set semantics: adding an existing tag is a
// no-op. Comparison is case-sensitive.
func (s *Session) AddHashtag(id platform.ID, tag string) error {
	if err := s.InitDraft(id); err != nil {
		return err
	}
	draft := s.Drafts[id]
	if tag == "" || draft.HasHashtag(tag) {
		return nil
	}
	draft.Hashtags = append(draft.Hashtags, tag)
	s.Drafts[id] = draft
	s.touch()
	return nil
}

// RemoveHashtag drops tag if present.
func (s *Session) RemoveHashtag(id platform.ID, tag string) error {
	if err := s.InitDraft(id); err != nil {
		return err
	}
	draft := s.Drafts[id]
	for i, t := range draft.Hashtags {
		if t == tag {
			draft.Hashtags = append(draft.Hashtags[:i], draft.Hashtags[i+1:]...)
			break
		}
	}
	s.Drafts[id] = draft
	s.touch()
	return nil
}

// AddMedia appends a media reference to the platform's draft.
func (s *Session) AddMedia(id platform.ID, ref string) error {
	if err := s.InitDraft(id); err != nil {
		return err
	}
	draft := s.Drafts[id]
	draft.Media = append(draft.Media, ref)
	s.Drafts[id] = draft
	s.touch()
	return nil
}

// RemoveMedia removes the media reference at index.
func (s *Session) RemoveMedia(id platform.ID, index int) error {
	if err := s.InitDraft(id); err != nil {
		return err
	}
	draft := s.Drafts[id]
	if index < 0 || index >= len(draft.Media) {
		return &ValidationError{Fields: map[string]string{
			"media": fmt.Sprintf("media index %d out of range", index),
		}}
	}
	draft.Media = append(draft.Media[:index], draft.Media[index+1:]...)
	s.Drafts[id] = draft
	s.touch()
	return nil
}

// RemovePlatform deletes the draft and drops the platform from the
// selection.
func (s *Session) RemovePlatform(id platform.ID) {
	delete(s.Drafts, id)
	for i, p := range s.SelectedPlatforms {
		if p == id {
			s.SelectedPlatforms = append(s.SelectedPlatforms[:i], s.SelectedPlatforms[i+1:]...)
			break
		}
	}
	s.touch()
}

// ApplyFanout merges the cross-platform drafts produced by an enhancement
// back into the store. Only platforms that still have a draft are updated.
func (s *Session) ApplyFanout(drafts map[platform.ID]models.Draft) {
	for id, d := range drafts {
		if _, ok := s.Drafts[id]; ok {
			s.Drafts[id] = d
		}
	}
	s.touch()
}
