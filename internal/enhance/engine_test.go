package enhance

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"social-campaign-platform/internal/platform"
	"social-campaign-platform/models"
)

func newTestEngine() *RuleEngine {
	return NewRuleEngine(rand.New(rand.NewSource(42)))
}

func draftWith(desc string) models.Draft {
	d := models.NewDraft()
	d.Title = "Launch week"
	d.Description = desc
	return d
}

func TestEnhanceNoMatchReturnsInputUnchanged(t *testing.T) {
	engine := newTestEngine()
	in := draftWith("This is amazing!")
	in.Hashtags = []string{"launch"}

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       in,
		Instruction: "xyzzy not a real instruction",
		Platform:    platform.Instagram,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	if !result.NoOp() {
		t.Errorf("expected no-op, applied rules %v", result.AppliedRules)
	}
	if !result.Draft.Equal(in) {
		t.Errorf("no-match enhancement changed the draft: %+v", result.Draft)
	}
}

func TestEnhanceEmptyInstructionIsNoOp(t *testing.T) {
	engine := newTestEngine()
	in := draftWith("Hello.")

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       in,
		Instruction: "   ",
		Platform:    platform.Facebook,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	if !result.NoOp() || !result.Draft.Equal(in) {
		t.Error("blank instruction must not change the draft")
	}
}

func TestEnhanceProfessionalTone(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       draftWith("This is amazing!"),
		Instruction: "make it more professional",
		Platform:    platform.LinkedIn,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	if result.Draft.Description != "This is excellent." {
		t.Errorf("description = %q, want %q", result.Draft.Description, "This is excellent.")
	}
	if len(result.AppliedRules) != 1 || result.AppliedRules[0] != "professional" {
		t.Errorf("applied rules = %v", result.AppliedRules)
	}
}

func TestEnhanceEngagingTone(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       draftWith("This is a good tip. Really helpful."),
		Instruction: "make it engaging",
		Platform:    platform.Instagram,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	desc := result.Draft.Description
	if !strings.Contains(desc, "amazing") {
		t.Errorf("expected energized wording, got %q", desc)
	}
	if strings.Contains(desc, ".") && !strings.Contains(desc, "!") {
		t.Errorf("expected exclamation marks, got %q", desc)
	}
}

func TestEnhanceGrammar(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       draftWith("Hello ,world .This  is   fine"),
		Instruction: "fix the grammar",
		Platform:    platform.Facebook,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	if result.Draft.Description != "Hello, world. This is fine" {
		t.Errorf("description = %q", result.Draft.Description)
	}
}

func TestEnhanceCTADeterministicWithSeededRand(t *testing.T) {
	a := NewRuleEngine(rand.New(rand.NewSource(7)))
	b := NewRuleEngine(rand.New(rand.NewSource(7)))

	req := Request{
		Draft:       draftWith("Big announcement."),
		Instruction: "add a call to action",
		Platform:    platform.Instagram,
	}

	ra, err := a.Enhance(context.Background(), req)
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	rb, err := b.Enhance(context.Background(), req)
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	if ra.Draft.Description != rb.Draft.Description {
		t.Error("same seed should pick the same call to action")
	}
	if ra.Draft.Description == "Big announcement." {
		t.Error("call to action was not appended")
	}
}

func TestEnhanceHashtagsDedup(t *testing.T) {
	engine := newTestEngine()
	in := draftWith("Career advice.")
	in.Hashtags = []string{"leadership"} // already in the LinkedIn pool

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       in,
		Instruction: "add some hashtags",
		Platform:    platform.LinkedIn,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}

	seen := map[string]int{}
	for _, tag := range result.Draft.Hashtags {
		seen[tag]++
	}
	if seen["leadership"] != 1 {
		t.Errorf("hashtag pool injection duplicated a tag: %v", result.Draft.Hashtags)
	}
	if seen["career"] != 1 || seen["business"] != 1 {
		t.Errorf("LinkedIn pool tags missing: %v", result.Draft.Hashtags)
	}
}

func TestEnhanceShorten(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       draftWith("One. Two. Three. Four."),
		Instruction: "shorten this",
		Platform:    platform.TikTok,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	if result.Draft.Description != "One. Two." {
		t.Errorf("description = %q, want %q", result.Draft.Description, "One. Two.")
	}
}

func TestEnhanceMultipleRulesApplyInOrder(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       draftWith("A good story."),
		Instruction: "fix grammar and add hashtags",
		Platform:    platform.Instagram,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	if len(result.AppliedRules) != 2 {
		t.Fatalf("applied rules = %v, want grammar+hashtags", result.AppliedRules)
	}
	if result.AppliedRules[0] != "grammar" || result.AppliedRules[1] != "hashtags" {
		t.Errorf("rule order = %v", result.AppliedRules)
	}
}

func TestEnhanceAllPlatformsFanout(t *testing.T) {
	engine := newTestEngine()

	all := map[platform.ID]models.Draft{
		platform.Instagram: draftWith("Insta copy."),
		platform.LinkedIn:  draftWith("LinkedIn copy."),
	}

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       all[platform.Instagram],
		Instruction: "enhance for all platforms",
		Platform:    platform.Instagram,
		AllDrafts:   all,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	if result.FanoutDrafts == nil {
		t.Fatal("expected fanout drafts")
	}
	if !strings.Contains(result.FanoutDrafts[platform.LinkedIn].Description, "industry insights") {
		t.Errorf("LinkedIn fanout missing suffix: %q", result.FanoutDrafts[platform.LinkedIn].Description)
	}
	if !strings.Contains(result.Draft.Description, "daily inspiration") {
		t.Errorf("current draft missing Instagram suffix: %q", result.Draft.Description)
	}
	// the input map must be untouched
	if strings.Contains(all[platform.LinkedIn].Description, "industry insights") {
		t.Error("enhancement mutated the caller's draft map")
	}
}

func TestEnhanceFanoutKeepsLaterRuleEdits(t *testing.T) {
	engine := newTestEngine()

	all := map[platform.ID]models.Draft{
		platform.Instagram: draftWith("Launch day."),
		platform.LinkedIn:  draftWith("LinkedIn copy."),
	}

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       all[platform.Instagram],
		Instruction: "enhance for all platforms and check compliance",
		Platform:    platform.Instagram,
		AllDrafts:   all,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	if !strings.Contains(result.Draft.Description, "policy compliance") {
		t.Fatalf("compliance note missing from result: %q", result.Draft.Description)
	}

	// Callers store result.Draft and then merge FanoutDrafts over the
	// session, so the current platform's fanout copy must carry every
	// edit, not just those made before the cross-platform rule ran.
	got := result.FanoutDrafts[platform.Instagram].Description
	if got != result.Draft.Description {
		t.Errorf("fanout draft diverged from result draft:\nfanout: %q\nresult: %q", got, result.Draft.Description)
	}
	if !strings.Contains(got, "policy compliance") {
		t.Errorf("fanout draft lost the compliance note: %q", got)
	}
}

func TestEnhanceCompliance(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.Enhance(context.Background(), Request{
		Draft:       draftWith("Giveaway time."),
		Instruction: "check platform policy",
		Platform:    platform.YouTube,
	})
	if err != nil {
		t.Fatalf("Enhance error: %v", err)
	}
	if !strings.Contains(result.Draft.Description, "YouTube platform policy compliance") {
		t.Errorf("compliance note missing: %q", result.Draft.Description)
	}
}

func TestEnhanceCanceledContext(t *testing.T) {
	engine := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Enhance(ctx, Request{
		Draft:       draftWith("Hello."),
		Instruction: "fix grammar",
		Platform:    platform.Facebook,
	})
	if err == nil {
		t.Fatal("canceled context should abort the enhancement")
	}
}
