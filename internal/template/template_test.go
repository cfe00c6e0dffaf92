package template

import (
	"errors"
	"strings"
	"testing"
	"time"

	"social-campaign-platform/internal/platform"
	"social-campaign-platform/models"
)

func testIdea() models.ContentIdea {
	return models.ContentIdea{
		IdeaID:      1,
		Title:       "5 Tips",
		Description: "Save money.",
		ContentType: models.ContentTypeText,
		Tags:        []string{"finance"},
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestExpandLinkedIn(t *testing.T) {
	draft, err := Expand(testIdea(), platform.LinkedIn)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}

	if draft.Title != "5 Tips" {
		t.Errorf("title = %q, want %q", draft.Title, "5 Tips")
	}
	if !strings.HasSuffix(draft.Description, LinkedInNetworkingPrompt) {
		t.Errorf("description %q does not end with networking prompt", draft.Description)
	}
	if !strings.HasPrefix(draft.Description, "Save money.") {
		t.Errorf("description %q lost the original copy", draft.Description)
	}
}

func TestExpandTikTokTitleTags(t *testing.T) {
	draft, err := Expand(testIdea(), platform.TikTok)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	if !strings.Contains(draft.Title, "#fyp") || !strings.Contains(draft.Title, "#viral") {
		t.Errorf("TikTok title %q missing discovery tags", draft.Title)
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	idea := testIdea()
	for _, id := range platform.All() {
		a, err := Expand(idea, id)
		if err != nil {
			t.Fatalf("Expand(%s) error: %v", id, err)
		}
		b, err := Expand(idea, id)
		if err != nil {
			t.Fatalf("Expand(%s) second call error: %v", id, err)
		}
		if !a.Equal(b) {
			t.Errorf("Expand(%s) is not deterministic", id)
		}
	}
}

func TestExpandHashtagUnionOrder(t *testing.T) {
	idea := testIdea()
	idea.Hashtags = []string{"budget", "finance"} // "finance" repeats in Tags
	idea.Tags = []string{"finance", "tips"}

	draft, err := Expand(idea, platform.LinkedIn)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}

	want := []string{"budget", "finance", "tips", "professionaldevelopment", "networking"}
	if len(draft.Hashtags) != len(want) {
		t.Fatalf("hashtags = %v, want %v", draft.Hashtags, want)
	}
	for i := range want {
		if draft.Hashtags[i] != want[i] {
			t.Fatalf("hashtags = %v, want %v", draft.Hashtags, want)
		}
	}
}

func TestExpandMedia(t *testing.T) {
	idea := testIdea()
	draft, _ := Expand(idea, platform.Instagram)
	if len(draft.Media) != 0 {
		t.Errorf("idea without media produced media list %v", draft.Media)
	}

	idea.MediaRef = "https://cdn.example.com/clip.mp4"
	draft, _ = Expand(idea, platform.Instagram)
	if len(draft.Media) != 1 || draft.Media[0] != idea.MediaRef {
		t.Errorf("media = %v, want [%s]", draft.Media, idea.MediaRef)
	}
}

func TestExpandUnknownPlatform(t *testing.T) {
	_, err := Expand(testIdea(), "friendster")
	if !errors.Is(err, platform.ErrUnknownPlatform) {
		t.Errorf("expected ErrUnknownPlatform, got %v", err)
	}
}

func TestExpandSettingsEmpty(t *testing.T) {
	draft, _ := Expand(testIdea(), platform.Facebook)
	if len(draft.Settings) != 0 {
		t.Errorf("fresh expansion should have empty settings, got %v", draft.Settings)
	}
}
