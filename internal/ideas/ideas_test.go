package ideas

import (
	"context"
	"errors"
	"testing"

	"social-campaign-platform/models"
)

func TestStaticSourceListFilters(t *testing.T) {
	src := NewStaticSource(nil)
	ctx := context.Background()

	all, err := src.List(ctx, "", "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != len(SeedLibrary()) {
		t.Fatalf("expected %d ideas, got %d", len(SeedLibrary()), len(all))
	}

	videos, err := src.List(ctx, models.ContentTypeVideo, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, idea := range videos {
		if idea.ContentType != models.ContentTypeVideo {
			t.Errorf("filter leaked content type %q", idea.ContentType)
		}
	}
	if len(videos) == 0 {
		t.Error("seed library should contain at least one video idea")
	}

	tagged, err := src.List(ctx, "", "finance")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tagged) != 1 || tagged[0].Title != "5 Tips" {
		t.Errorf("tag filter returned wrong ideas: %+v", tagged)
	}
}

func TestStaticSourceGet(t *testing.T) {
	src := NewStaticSource(nil)
	ctx := context.Background()

	idea, err := src.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if idea.Title != "5 Tips" {
		t.Errorf("expected idea 1 to be 5 Tips, got %q", idea.Title)
	}

	// Returned copy must not alias the library
	idea.Title = "mutated"
	again, err := src.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Title != "5 Tips" {
		t.Error("Get returned a reference into the library")
	}

	if _, err := src.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing idea, got %v", err)
	}
}
