package services

import (
	"testing"
	"time"

	"social-campaign-platform/internal/platform"
	"social-campaign-platform/internal/schedule"
	"social-campaign-platform/internal/wizard"
)

func TestSessionEncodeDecodeRoundTrip(t *testing.T) {
	sess := wizard.NewSession("user-1")
	if err := sess.SetPlatforms([]platform.ID{platform.LinkedIn, platform.Instagram}); err != nil {
		t.Fatalf("SetPlatforms failed: %v", err)
	}
	if err := sess.UpdateField(platform.LinkedIn, "title", "Quarterly Update"); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	sess.Schedule.Add(schedule.Entry{
		ID:       "e1",
		Platform: platform.LinkedIn,
		Content:  "Quarterly Update",
		At:       time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC),
	})

	payload, err := encodeSession(sess)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	out, err := decodeSession(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if out.ID != sess.ID || out.UserID != sess.UserID {
		t.Errorf("identity fields lost: %+v", out)
	}
	if len(out.SelectedPlatforms) != 2 {
		t.Errorf("expected 2 platforms, got %d", len(out.SelectedPlatforms))
	}
	if out.Drafts[platform.LinkedIn].Title != "Quarterly Update" {
		t.Errorf("draft title lost: %q", out.Drafts[platform.LinkedIn].Title)
	}
	if len(out.Schedule.Entries) != 1 || !out.Schedule.Entries[0].At.Equal(sess.Schedule.Entries[0].At) {
		t.Errorf("schedule entries lost: %+v", out.Schedule.Entries)
	}
}

func TestDecodeSessionRejectsGarbage(t *testing.T) {
	if _, err := decodeSession([]byte("not a payload")); err == nil {
		t.Error("expected error for payload without algorithm prefix")
	}
	if _, err := decodeSession([]byte("none|{broken")); err == nil {
		t.Error("expected error for broken JSON")
	}
}
