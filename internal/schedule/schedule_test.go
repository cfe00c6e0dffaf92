package schedule

import (
	"errors"
	"testing"
	"time"

	"social-campaign-platform/internal/platform"
)

func entryAt(id string, p platform.ID, at time.Time) Entry {
	return Entry{ID: id, Platform: p, Content: "post " + id, At: at}
}

func TestDateOfNormalizesToUTC(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// 2026-03-01 07:00 JST is 2026-02-28 22:00 UTC
	local := time.Date(2026, 3, 1, 7, 0, 0, 0, tokyo)
	d := DateOf(local)
	if d != (Date{Year: 2026, Month: time.February, Day: 28}) {
		t.Errorf("DateOf = %s, want 2026-02-28", d)
	}
}

func TestMonthBuckets(t *testing.T) {
	entries := []Entry{
		entryAt("a", platform.Instagram, time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC)),
		entryAt("b", platform.LinkedIn, time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC)),
		entryAt("c", platform.TikTok, time.Date(2026, 9, 17, 9, 0, 0, 0, time.UTC)),
		entryAt("d", platform.TikTok, time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)),
	}

	buckets := MonthBuckets(entries, 2026, time.September)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 days with entries, got %d", len(buckets))
	}
	if len(buckets[3]) != 2 {
		t.Errorf("day 3 bucket = %d entries, want 2", len(buckets[3]))
	}
	if buckets[3][0].ID != "a" {
		t.Errorf("day 3 bucket not time sorted: %v", buckets[3])
	}
	if len(buckets[17]) != 1 || buckets[17][0].ID != "c" {
		t.Errorf("day 17 bucket wrong: %v", buckets[17])
	}
}

func TestCollisions(t *testing.T) {
	at := time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		entryAt("a", platform.Instagram, at),
		entryAt("b", platform.Instagram, at.Add(30*time.Second)), // same minute
		entryAt("c", platform.LinkedIn, at),                      // other platform, no collision
		entryAt("d", platform.Instagram, at.Add(2*time.Minute)),
	}

	cols := Collisions(entries)
	if len(cols) != 1 {
		t.Fatalf("collisions = %d, want 1", len(cols))
	}
	if cols[0].First.ID != "a" || cols[0].Second.ID != "b" {
		t.Errorf("collision pair = %s/%s", cols[0].First.ID, cols[0].Second.ID)
	}
}

func TestApprovedEntryIsImmutable(t *testing.T) {
	s := &Set{}
	s.Add(entryAt("a", platform.YouTube, time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC)))

	if err := s.Approve("a"); err != nil {
		t.Fatalf("Approve error: %v", err)
	}

	err := s.Update("a", "new content", time.Time{})
	if !errors.Is(err, ErrEntryApproved) {
		t.Errorf("Update on approved entry = %v, want ErrEntryApproved", err)
	}

	err = s.Remove("a")
	if !errors.Is(err, ErrEntryApproved) {
		t.Errorf("Remove on approved entry = %v, want ErrEntryApproved", err)
	}
}

func TestApproveAll(t *testing.T) {
	s := &Set{}
	s.Add(entryAt("a", platform.Instagram, time.Now()))
	s.Add(entryAt("b", platform.TikTok, time.Now().Add(time.Hour)))

	if s.AllApproved() {
		t.Error("pending entries should not report approved")
	}

	s.ApproveAll()
	if !s.AllApproved() {
		t.Error("ApproveAll should approve every entry")
	}
}

func TestUpdateUnknownEntry(t *testing.T) {
	s := &Set{}
	if err := s.Update("nope", "x", time.Time{}); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestAddNormalizesTimeAndClearsApproval(t *testing.T) {
	s := &Set{}
	e := entryAt("a", platform.Facebook, time.Date(2026, 9, 3, 10, 0, 0, 0, time.FixedZone("X", 3600)))
	e.Approved = true
	s.Add(e)

	if s.Entries[0].Approved {
		t.Error("Add must not accept pre-approved entries")
	}
	if s.Entries[0].At.Location() != time.UTC {
		t.Error("Add must normalize entry time to UTC")
	}
}
