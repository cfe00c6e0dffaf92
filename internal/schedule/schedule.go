// Package schedule holds the calendar domain: approvable schedule entries
// and day bucketing over a normalized calendar-date value. All entry times
// are normalized to UTC before any date arithmetic, so bucketing never
// depends on the server's locale.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"social-campaign-platform/internal/platform"
)

var (
	// ErrEntryApproved rejects edits to an entry that has already been
	// approved; approved entries are read-only display items.
	ErrEntryApproved = errors.New("schedule entry already approved")

	// ErrEntryNotFound is returned when an entry id is not in the set.
	ErrEntryNotFound = errors.New("schedule entry not found")
)

// Entry is a calendar-placed, approvable unit: one platform post at one
// time. Entries are mutable until approved.
type Entry struct {
	ID       string      `json:"id"`
	Platform platform.ID `json:"platform"`
	Content  string      `json:"content"`
	At       time.Time   `json:"at"`
	Approved bool        `json:"approved"`
}

// Date is a timezone-stripped calendar day.
type Date struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// DateOf normalizes t to UTC and returns its calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Buckets groups entries by calendar day.
func Buckets(entries []Entry) map[Date][]Entry {
	out := make(map[Date][]Entry)
	for _, e := range entries {
		d := DateOf(e.At)
		out[d] = append(out[d], e)
	}
	for d := range out {
		bucket := out[d]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].At.Before(bucket[j].At) })
		out[d] = bucket
	}
	return out
}

// MonthBuckets groups the entries falling in the given month, keyed by day
// of month. Entries outside the month are dropped.
func MonthBuckets(entries []Entry, year int, month time.Month) map[int][]Entry {
	out := make(map[int][]Entry)
	for d, bucket := range Buckets(entries) {
		if d.Year == year && d.Month == month {
			out[d.Day] = bucket
		}
	}
	return out
}

// Collision is a pair of entries targeting the same platform at the same
// minute. Collisions block approval of the scheduling step.
type Collision struct {
	First  Entry `json:"first"`
	Second Entry `json:"second"`
}

// Collisions finds same-platform, same-minute pairs.
func Collisions(entries []Entry) []Collision {
	type slot struct {
		platform platform.ID
		minute   int64
	}

	seen := make(map[slot]Entry)
	var out []Collision
	for _, e := range entries {
		s := slot{platform: e.Platform, minute: e.At.UTC().Unix() / 60}
		if prev, ok := seen[s]; ok {
			out = append(out, Collision{First: prev, Second: e})
			continue
		}
		seen[s] = e
	}
	return out
}

// Set is the ordered collection of schedule entries owned by one wizard
// session.
type Set struct {
	Entries []Entry `json:"entries"`
}

// Add appends a new entry. Approved entries cannot be added directly; they
// start pending and must go through Approve.
func (s *Set) Add(e Entry) {
	e.Approved = false
	e.At = e.At.UTC()
	s.Entries = append(s.Entries, e)
}

// Update replaces the content or time of a pending entry.
func (s *Set) Update(id string, content string, at time.Time) error {
	for i := range s.Entries {
		if s.Entries[i].ID != id {
			continue
		}
		if s.Entries[i].Approved {
			return ErrEntryApproved
		}
		if content != "" {
			s.Entries[i].Content = content
		}
		if !at.IsZero() {
			s.Entries[i].At = at.UTC()
		}
		return nil
	}
	return ErrEntryNotFound
}

// Remove deletes a pending entry. Approved entries stay.
func (s *Set) Remove(id string) error {
	for i := range s.Entries {
		if s.Entries[i].ID != id {
			continue
		}
		if s.Entries[i].Approved {
			return ErrEntryApproved
		}
		s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
		return nil
	}
	return ErrEntryNotFound
}

// Approve marks a single entry approved.
func (s *Set) Approve(id string) error {
	for i := range s.Entries {
		if s.Entries[i].ID == id {
			s.Entries[i].Approved = true
			return nil
		}
	}
	return ErrEntryNotFound
}

// ApproveAll marks every entry approved.
func (s *Set) ApproveAll() {
	for i := range s.Entries {
		s.Entries[i].Approved = true
	}
}

// AllApproved reports whether every entry carries the approved flag. An
// empty set counts as approved.
func (s *Set) AllApproved() bool {
	for _, e := range s.Entries {
		if !e.Approved {
			return false
		}
	}
	return true
}
