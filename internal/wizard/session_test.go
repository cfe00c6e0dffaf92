package wizard

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"social-campaign-platform/internal/platform"
	"social-campaign-platform/internal/schedule"
	"social-campaign-platform/models"
)

func testIdea() models.ContentIdea {
	return models.ContentIdea{
		IdeaID:      1,
		Title:       "5 Tips",
		Description: "Save money.",
		ContentType: models.ContentTypeText,
		Tags:        []string{"finance"},
	}
}

func TestPlatformSelectionSyncsDrafts(t *testing.T) {
	s := NewSession("user-1")

	if err := s.SetPlatforms([]platform.ID{platform.Instagram, platform.TikTok}); err != nil {
		t.Fatalf("SetPlatforms error: %v", err)
	}
	if len(s.Drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(s.Drafts))
	}

	// deselect tiktok: its draft must go away
	if err := s.SetPlatforms([]platform.ID{platform.Instagram}); err != nil {
		t.Fatalf("SetPlatforms error: %v", err)
	}
	if len(s.Drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(s.Drafts))
	}
	if _, ok := s.Drafts[platform.Instagram]; !ok {
		t.Error("instagram draft missing after deselecting tiktok")
	}
	if _, ok := s.Drafts[platform.TikTok]; ok {
		t.Error("tiktok draft should have been removed")
	}
}

func TestSetPlatformsDeduplicatesAndValidates(t *testing.T) {
	s := NewSession("user-1")

	if err := s.SetPlatforms([]platform.ID{platform.Instagram, platform.Instagram}); err != nil {
		t.Fatalf("SetPlatforms error: %v", err)
	}
	if len(s.SelectedPlatforms) != 1 {
		t.Errorf("selection = %v, duplicates must collapse", s.SelectedPlatforms)
	}

	err := s.SetPlatforms([]platform.ID{"orkut"})
	if !errors.Is(err, platform.ErrUnknownPlatform) {
		t.Errorf("expected ErrUnknownPlatform, got %v", err)
	}
}

func TestSelectIdeaSeedsAllSelectedPlatforms(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.LinkedIn, platform.YouTube})

	if err := s.SelectIdea(testIdea()); err != nil {
		t.Fatalf("SelectIdea error: %v", err)
	}

	for _, id := range s.SelectedPlatforms {
		if s.Drafts[id].Title == "" {
			t.Errorf("%s draft not seeded from idea", id)
		}
	}
	if s.Drafts[platform.LinkedIn].Title != "5 Tips" {
		t.Errorf("linkedin title = %q", s.Drafts[platform.LinkedIn].Title)
	}
}

func TestInitDraftIdempotent(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.Instagram})

	s.UpdateField(platform.Instagram, "title", "Keep me")
	if err := s.InitDraft(platform.Instagram); err != nil {
		t.Fatalf("InitDraft error: %v", err)
	}
	if s.Drafts[platform.Instagram].Title != "Keep me" {
		t.Error("InitDraft on an existing draft must be a no-op")
	}
}

func TestUpdateFieldAutoInits(t *testing.T) {
	s := NewSession("user-1")

	// no prior draft for facebook: update must create one, not drop the edit
	if err := s.UpdateField(platform.Facebook, "title", "Hello"); err != nil {
		t.Fatalf("UpdateField error: %v", err)
	}
	if s.Drafts[platform.Facebook].Title != "Hello" {
		t.Error("UpdateField on a missing draft lost the edit")
	}
}

func TestUpdateFieldDoesNotFanOut(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.Instagram, platform.TikTok})

	s.UpdateField(platform.Instagram, "description", "Instagram only")
	if s.Drafts[platform.TikTok].Description != "" {
		t.Error("edit fanned out to another platform")
	}
}

func TestUpdateFieldEnforcesDescriptionLimit(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.Instagram})

	long := strings.Repeat("x", 2201) // instagram max is 2200
	err := s.UpdateField(platform.Instagram, "description", long)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if s.Drafts[platform.Instagram].Description == long {
		t.Error("over-limit description must not be stored")
	}
}

func TestUpdateFieldSettings(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.Instagram})

	if err := s.UpdateField(platform.Instagram, "settings.postType", "Reels"); err != nil {
		t.Fatalf("UpdateField error: %v", err)
	}
	if s.Drafts[platform.Instagram].Settings["postType"] != "Reels" {
		t.Errorf("settings = %v", s.Drafts[platform.Instagram].Settings)
	}
}

func TestAddHashtagSetSemantics(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.Instagram})

	s.AddHashtag(platform.Instagram, "Growth")
	s.AddHashtag(platform.Instagram, "Growth")

	tags := s.Drafts[platform.Instagram].Hashtags
	if len(tags) != 1 || tags[0] != "Growth" {
		t.Errorf("hashtags = %v, want [Growth]", tags)
	}

	// case-sensitive: lowercase variant is a distinct tag
	s.AddHashtag(platform.Instagram, "growth")
	if len(s.Drafts[platform.Instagram].Hashtags) != 2 {
		t.Errorf("hashtags = %v, case-sensitive compare expected", s.Drafts[platform.Instagram].Hashtags)
	}

	s.RemoveHashtag(platform.Instagram, "Growth")
	tags = s.Drafts[platform.Instagram].Hashtags
	if len(tags) != 1 || tags[0] != "growth" {
		t.Errorf("hashtags after remove = %v", tags)
	}
}

func TestMediaOps(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.YouTube})

	s.AddMedia(platform.YouTube, "a.mp4")
	s.AddMedia(platform.YouTube, "b.mp4")

	if err := s.RemoveMedia(platform.YouTube, 0); err != nil {
		t.Fatalf("RemoveMedia error: %v", err)
	}
	media := s.Drafts[platform.YouTube].Media
	if len(media) != 1 || media[0] != "b.mp4" {
		t.Errorf("media = %v", media)
	}

	if err := s.RemoveMedia(platform.YouTube, 5); err == nil {
		t.Error("out of range removal should fail")
	}
}

func TestAdvanceBlockedWithoutPlatforms(t *testing.T) {
	s := NewSession("user-1")

	err := s.Advance()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if s.StepIndex != StepChannelSelection {
		t.Errorf("step index moved to %d on failed gate", s.StepIndex)
	}
	if s.ValidationErrors["platforms"] == "" {
		t.Error("validation errors not recorded on session")
	}
}

func TestAdvanceThroughFlow(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.Instagram})

	if err := s.Advance(); err != nil {
		t.Fatalf("advance past channel selection: %v", err)
	}
	if s.ValidationErrors != nil {
		t.Error("validation errors must clear on successful transition")
	}

	// content selection gate: needs an idea or an explicit skip
	if err := s.Advance(); err == nil {
		t.Fatal("advance without idea should fail")
	}
	s.SkipIdea()
	if err := s.Advance(); err != nil {
		t.Fatalf("advance past content selection: %v", err)
	}

	// editing gate: every selected platform needs a title
	if err := s.Advance(); err == nil {
		t.Fatal("advance with empty titles should fail")
	}
	s.UpdateField(platform.Instagram, "title", "Launch post")
	if err := s.Advance(); err != nil {
		t.Fatalf("advance past editing: %v", err)
	}

	// scheduling gate: entries must be approved
	s.Schedule.Add(schedule.Entry{
		ID:       uuid.NewString(),
		Platform: platform.Instagram,
		Content:  "Launch post",
		At:       time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
	})
	if err := s.Advance(); err == nil {
		t.Fatal("advance with unapproved entries should fail")
	}
	s.Schedule.ApproveAll()
	if err := s.Advance(); err != nil {
		t.Fatalf("advance past scheduling: %v", err)
	}

	if s.StepIndex != StepSummary {
		t.Fatalf("step index = %d, want summary", s.StepIndex)
	}
	if err := s.Advance(); !errors.Is(err, ErrAtFinalStep) {
		t.Errorf("advance at summary = %v, want ErrAtFinalStep", err)
	}
	if err := s.CanLaunch(); err != nil {
		t.Errorf("CanLaunch at summary = %v", err)
	}
}

func TestSchedulingGateRejectsCollisions(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.Instagram})
	s.SkipIdea()
	s.UpdateField(platform.Instagram, "title", "T")
	s.StepIndex = StepSchedulingApproval

	at := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	s.Schedule.Add(schedule.Entry{ID: "a", Platform: platform.Instagram, At: at})
	s.Schedule.Add(schedule.Entry{ID: "b", Platform: platform.Instagram, At: at})
	s.Schedule.ApproveAll()

	err := s.Advance()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["schedule.collisions"] == "" {
		t.Errorf("collision message missing: %v", verr.Fields)
	}
}

func TestRetreatPreservesData(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.TikTok})
	s.Advance()
	s.SkipIdea()
	s.Advance()
	s.UpdateField(platform.TikTok, "title", "Keep this")

	if err := s.Retreat(); err != nil {
		t.Fatalf("Retreat error: %v", err)
	}
	if err := s.Retreat(); err != nil {
		t.Fatalf("Retreat error: %v", err)
	}
	if err := s.Retreat(); !errors.Is(err, ErrAtFirstStep) {
		t.Errorf("retreat at first step = %v", err)
	}

	if s.Drafts[platform.TikTok].Title != "Keep this" {
		t.Error("retreat discarded draft data")
	}
	if !s.IsSelected(platform.TikTok) {
		t.Error("retreat discarded platform selection")
	}
}

func TestJumpTo(t *testing.T) {
	s := NewSession("user-1")
	s.SetPlatforms([]platform.ID{platform.Facebook})
	s.SkipIdea()
	s.UpdateField(platform.Facebook, "title", "T")

	// all gates up to scheduling pass, so a direct forward jump is allowed
	if err := s.JumpTo(StepSchedulingApproval); err != nil {
		t.Fatalf("JumpTo error: %v", err)
	}
	if s.StepIndex != StepSchedulingApproval {
		t.Errorf("step index = %d", s.StepIndex)
	}

	// backward jumps are unconditional
	if err := s.JumpTo(StepChannelSelection); err != nil {
		t.Fatalf("backward JumpTo error: %v", err)
	}

	// forward jump past a failing gate must not move
	s.SetPlatforms(nil)
	if err := s.JumpTo(StepContentEditing); err == nil {
		t.Fatal("jump past failing gate should fail")
	}
	if s.StepIndex != StepChannelSelection {
		t.Errorf("failed jump moved the step index to %d", s.StepIndex)
	}

	if err := s.JumpTo(99); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("JumpTo(99) = %v", err)
	}
}

func TestCanLaunchBeforeSummary(t *testing.T) {
	s := NewSession("user-1")
	if err := s.CanLaunch(); !errors.Is(err, ErrNotReadyToLaunch) {
		t.Errorf("CanLaunch at step 0 = %v", err)
	}
}
