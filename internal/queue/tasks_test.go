package queue

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/hibiken/asynq"

	"social-campaign-platform/internal/enhance"
	"social-campaign-platform/internal/platform"
	"social-campaign-platform/internal/wizard"
)

// memSessions is an in-memory SessionStore for exercising task handlers
// without Redis.
type memSessions struct {
	sessions map[string]*wizard.Session
	saves    int
}

func newMemSessions(sess ...*wizard.Session) *memSessions {
	m := &memSessions{sessions: make(map[string]*wizard.Session)}
	for _, s := range sess {
		m.sessions[s.ID] = s
	}
	return m
}

func (m *memSessions) Get(_ context.Context, id string) (*wizard.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, wizard.ErrSessionNotFound
	}
	return s, nil
}

func (m *memSessions) Save(_ context.Context, sess *wizard.Session) error {
	m.sessions[sess.ID] = sess
	m.saves++
	return nil
}

func enhanceProcessor(store SessionStore) *TaskProcessor {
	engine := enhance.NewRuleEngine(rand.New(rand.NewSource(7)))
	return NewTaskProcessor(nil, nil, store, engine, nil)
}

func TestEnhanceDraftUpdatesSession(t *testing.T) {
	sess := wizard.NewSession("user-1")
	if err := sess.SetPlatforms([]platform.ID{platform.Instagram}); err != nil {
		t.Fatalf("SetPlatforms failed: %v", err)
	}
	if err := sess.UpdateField(platform.Instagram, "description", "This is amazing!"); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	store := newMemSessions(sess)

	task, err := NewAIEnhanceTask(sess.ID, string(platform.Instagram), "make it more professional")
	if err != nil {
		t.Fatalf("NewAIEnhanceTask failed: %v", err)
	}

	if err := enhanceProcessor(store).EnhanceDraft(context.Background(), task); err != nil {
		t.Fatalf("EnhanceDraft failed: %v", err)
	}

	got := store.sessions[sess.ID].Drafts[platform.Instagram].Description
	if !strings.Contains(got, "excellent") || strings.Contains(got, "amazing") {
		t.Errorf("professional rule not applied, got %q", got)
	}
	if store.saves != 1 {
		t.Errorf("expected one save, got %d", store.saves)
	}
}

func TestEnhanceDraftSessionGoneIsDropped(t *testing.T) {
	store := newMemSessions()

	task, err := NewAIEnhanceTask("missing", string(platform.Instagram), "fix grammar")
	if err != nil {
		t.Fatalf("NewAIEnhanceTask failed: %v", err)
	}

	// A launched or expired session is a normal end state for a queued
	// enhancement, so the handler must not report failure.
	if err := enhanceProcessor(store).EnhanceDraft(context.Background(), task); err != nil {
		t.Errorf("expected nil for missing session, got %v", err)
	}
}

func TestEnhanceDraftUnknownPlatformSkipsRetry(t *testing.T) {
	store := newMemSessions()

	task, err := NewAIEnhanceTask("any", "myspace", "fix grammar")
	if err != nil {
		t.Fatalf("NewAIEnhanceTask failed: %v", err)
	}

	err = enhanceProcessor(store).EnhanceDraft(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("expected SkipRetry for unknown platform, got %v", err)
	}
}

func TestEnhanceDraftNoMatchLeavesSessionUntouched(t *testing.T) {
	sess := wizard.NewSession("user-1")
	if err := sess.SetPlatforms([]platform.ID{platform.Instagram}); err != nil {
		t.Fatalf("SetPlatforms failed: %v", err)
	}
	if err := sess.UpdateField(platform.Instagram, "description", "Plain copy."); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	store := newMemSessions(sess)

	task, err := NewAIEnhanceTask(sess.ID, string(platform.Instagram), "xyzzy not a real instruction")
	if err != nil {
		t.Fatalf("NewAIEnhanceTask failed: %v", err)
	}

	if err := enhanceProcessor(store).EnhanceDraft(context.Background(), task); err != nil {
		t.Fatalf("EnhanceDraft failed: %v", err)
	}
	if store.saves != 0 {
		t.Errorf("no-op enhancement must not rewrite the session, saves=%d", store.saves)
	}
	if got := store.sessions[sess.ID].Drafts[platform.Instagram].Description; got != "Plain copy." {
		t.Errorf("draft changed on no-op: %q", got)
	}
}
