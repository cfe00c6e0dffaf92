package platform

import (
	"errors"
	"testing"
)

func TestLookupKnownPlatforms(t *testing.T) {
	limits := map[ID]int{
		Instagram: 2200,
		Facebook:  63206,
		LinkedIn:  3000,
		TikTok:    2200,
		YouTube:   5000,
	}

	for id, want := range limits {
		cap, err := Lookup(id)
		if err != nil {
			t.Fatalf("Lookup(%s) error: %v", id, err)
		}
		if cap.MaxDescriptionLen != want {
			t.Errorf("Lookup(%s).MaxDescriptionLen = %d, want %d", id, cap.MaxDescriptionLen, want)
		}
		if len(cap.PostTypes) == 0 {
			t.Errorf("Lookup(%s) has no post types", id)
		}
	}
}

func TestLookupUnknownPlatform(t *testing.T) {
	_, err := Lookup("myspace")
	if err == nil {
		t.Fatal("Lookup(myspace) should fail")
	}
	if !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("expected ErrUnknownPlatform, got %v", err)
	}
}

func TestParse(t *testing.T) {
	id, err := Parse("tiktok")
	if err != nil {
		t.Fatalf("Parse(tiktok) error: %v", err)
	}
	if id != TikTok {
		t.Errorf("Parse(tiktok) = %s", id)
	}

	if _, err := Parse(""); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("Parse(\"\") should return ErrUnknownPlatform, got %v", err)
	}
}

func TestAllIsStable(t *testing.T) {
	a := All()
	b := All()
	if len(a) != 5 {
		t.Fatalf("expected 5 platforms, got %d", len(a))
	}
	a[0] = "mutated"
	if b[0] == "mutated" {
		t.Error("All() must return a copy")
	}
}

func TestFeatures(t *testing.T) {
	cap, _ := Lookup(YouTube)
	if !cap.HasFeature(FeatureThumbnail) {
		t.Error("YouTube should support thumbnails")
	}
	if cap.HasFeature(FeatureMusic) {
		t.Error("YouTube should not report music support")
	}
	if !cap.HasPostType("Short") {
		t.Error("YouTube should allow Short post type")
	}
	if cap.HasPostType("Reels") {
		t.Error("YouTube should not allow Reels post type")
	}
}
