package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"social-campaign-platform/internal/enhance"
	"social-campaign-platform/internal/logger"
	"social-campaign-platform/internal/platform"
	"social-campaign-platform/internal/telemetry"
	"social-campaign-platform/internal/wizard"
	"social-campaign-platform/models"
)

const (
	TaskCampaignLaunch = "campaign:launch"
	TaskPostPublish    = "post:publish"
	TaskAIEnhance      = "ai:enhance"
)

type CampaignLaunchPayload struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type PostPublishPayload struct {
	SessionID string `json:"session_id"`
	EntryID   string `json:"entry_id"`
	Platform  string `json:"platform"`
}

type AIEnhancePayload struct {
	SessionID   string `json:"session_id"`
	Platform    string `json:"platform"`
	Instruction string `json:"instruction"`
}

// Task creators
func NewCampaignLaunchTask(sessionID, userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CampaignLaunchPayload{
		SessionID: sessionID,
		UserID:    userID,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskCampaignLaunch,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
		asynq.Queue("critical"),
	), nil
}

func NewPostPublishTask(sessionID, entryID, platformID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PostPublishPayload{
		SessionID: sessionID,
		EntryID:   entryID,
		Platform:  platformID,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskPostPublish,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(1*time.Minute),
		asynq.Queue("default"),
	), nil
}

func NewAIEnhanceTask(sessionID, platformID, instruction string) (*asynq.Task, error) {
	payload, err := json.Marshal(AIEnhancePayload{
		SessionID:   sessionID,
		Platform:    platformID,
		Instruction: instruction,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskAIEnhance,
		payload,
		asynq.MaxRetry(2),
		asynq.Timeout(1*time.Minute),
		asynq.Queue("low"),
	), nil
}

// Publisher delivers an entry's content to a platform. The stub publisher
// just marks entries published; real connectors plug in here.
type Publisher interface {
	Publish(ctx context.Context, platformID string, content models.Draft) error
}

type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, platformID string, content models.Draft) error {
	logger.Info("Publishing post", "platform", platformID, "title", content.Title)
	return nil
}

// SessionStore is the slice of the wizard session cache the worker needs.
// Get must return wizard.ErrSessionNotFound for missing or expired ids.
type SessionStore interface {
	Get(ctx context.Context, id string) (*wizard.Session, error)
	Save(ctx context.Context, sess *wizard.Session) error
}

// Task handlers
type TaskProcessor struct {
	db        *mongo.Database
	publisher Publisher
	sessions  SessionStore
	enhancer  enhance.Backend
	metrics   *telemetry.Metrics
}

func NewTaskProcessor(db *mongo.Database, publisher Publisher, sessions SessionStore, enhancer enhance.Backend, metrics *telemetry.Metrics) *TaskProcessor {
	if publisher == nil {
		publisher = LogPublisher{}
	}
	return &TaskProcessor{db: db, publisher: publisher, sessions: sessions, enhancer: enhancer, metrics: metrics}
}

// LaunchCampaign finalizes a launched campaign record. The HTTP handler has
// already inserted the campaign document with status "launching"; this task
// flips it to "scheduled" once the entries are confirmed persisted.
func (p *TaskProcessor) LaunchCampaign(ctx context.Context, t *asynq.Task) error {
	var payload CampaignLaunchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Launching campaign", "session_id", payload.SessionID, "user_id", payload.UserID)

	col := p.db.Collection("campaigns")

	var campaign models.Campaign
	err := col.FindOne(ctx, bson.M{"session_id": payload.SessionID}).Decode(&campaign)
	if err == mongo.ErrNoDocuments {
		return fmt.Errorf("campaign %s missing: %w", payload.SessionID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	if len(campaign.Entries) == 0 {
		_, err = col.UpdateOne(ctx,
			bson.M{"session_id": payload.SessionID},
			bson.M{"$set": bson.M{"status": models.CampaignStatusFailed, "updated_at": time.Now()}},
		)
		if err != nil {
			return err
		}
		return fmt.Errorf("campaign %s has no entries: %w", payload.SessionID, asynq.SkipRetry)
	}

	_, err = col.UpdateOne(ctx,
		bson.M{"session_id": payload.SessionID},
		bson.M{"$set": bson.M{"status": models.CampaignStatusScheduled, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}

	logger.Info("Campaign scheduled", "session_id", payload.SessionID, "entries", len(campaign.Entries))
	return nil
}

// PublishPost delivers a single due entry and records the outcome on the
// campaign document.
func (p *TaskProcessor) PublishPost(ctx context.Context, t *asynq.Task) error {
	var payload PostPublishPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	col := p.db.Collection("campaigns")

	var campaign models.Campaign
	err := col.FindOne(ctx, bson.M{"session_id": payload.SessionID}).Decode(&campaign)
	if err == mongo.ErrNoDocuments {
		return fmt.Errorf("campaign %s missing: %w", payload.SessionID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	var entry *models.CampaignEntry
	for i := range campaign.Entries {
		if campaign.Entries[i].EntryID == payload.EntryID {
			entry = &campaign.Entries[i]
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("entry %s missing: %w", payload.EntryID, asynq.SkipRetry)
	}
	if entry.Status == models.EntryStatusPublished {
		return nil
	}

	if err := p.publisher.Publish(ctx, entry.Platform, entry.Content); err != nil {
		if markErr := markEntry(ctx, col, payload.SessionID, payload.EntryID, bson.M{
			"entries.$.status": models.EntryStatusFailed,
			"entries.$.error":  err.Error(),
		}); markErr != nil {
			logger.Error("Failed to record entry failure", "entry_id", payload.EntryID, "error", markErr)
		}
		return err // will retry
	}

	now := time.Now().UTC()
	if err := markEntry(ctx, col, payload.SessionID, payload.EntryID, bson.M{
		"entries.$.status":       models.EntryStatusPublished,
		"entries.$.published_at": now,
		"entries.$.error":        "",
	}); err != nil {
		return err
	}

	if p.metrics != nil {
		p.metrics.EntriesPublished.Add(ctx, 1)
	}

	return p.maybeComplete(ctx, col, payload.SessionID)
}

// EnhanceDraft runs a queued enhancement against a live wizard session.
// The session may have launched or expired since the task was enqueued;
// both are normal outcomes, not retryable failures.
func (p *TaskProcessor) EnhanceDraft(ctx context.Context, t *asynq.Task) error {
	var payload AIEnhancePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}
	if p.sessions == nil || p.enhancer == nil {
		return fmt.Errorf("enhance task not wired: %w", asynq.SkipRetry)
	}

	id, err := platform.Parse(payload.Platform)
	if err != nil {
		return fmt.Errorf("enhance task for %q: %w", payload.Platform, asynq.SkipRetry)
	}

	sess, err := p.sessions.Get(ctx, payload.SessionID)
	if errors.Is(err, wizard.ErrSessionNotFound) {
		logger.Info("Enhance task dropped, session gone", "session_id", payload.SessionID)
		return nil
	}
	if err != nil {
		return err
	}

	draft, ok := sess.Drafts[id]
	if !ok {
		logger.Info("Enhance task dropped, platform deselected",
			"session_id", payload.SessionID, "platform", payload.Platform)
		return nil
	}

	result, err := p.enhancer.Enhance(ctx, enhance.Request{
		Draft:       draft,
		Instruction: payload.Instruction,
		Platform:    id,
		AllDrafts:   sess.Drafts,
	})
	if err != nil {
		return err // will retry
	}
	if result.NoOp() {
		logger.Info("Enhance instruction matched no rules",
			"session_id", payload.SessionID, "instruction", payload.Instruction)
		return nil
	}

	sess.Drafts[id] = result.Draft
	if result.FanoutDrafts != nil {
		sess.ApplyFanout(result.FanoutDrafts)
	}
	if err := p.sessions.Save(ctx, sess); err != nil {
		return err
	}

	if p.metrics != nil {
		p.metrics.EnhancementsApplied.Add(ctx, 1)
	}
	return nil
}

func markEntry(ctx context.Context, col *mongo.Collection, sessionID, entryID string, set bson.M) error {
	set["updated_at"] = time.Now()
	_, err := col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "entries.entry_id": entryID},
		bson.M{"$set": set},
	)
	return err
}

// maybeComplete marks the campaign completed once every entry has published.
func (p *TaskProcessor) maybeComplete(ctx context.Context, col *mongo.Collection, sessionID string) error {
	var campaign models.Campaign
	if err := col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&campaign); err != nil {
		return err
	}
	for _, e := range campaign.Entries {
		if e.Status != models.EntryStatusPublished {
			return nil
		}
	}

	_, err := col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"status": models.CampaignStatusCompleted, "updated_at": time.Now()}},
	)
	if err == nil {
		logger.Info("Campaign completed", "session_id", sessionID)
	}
	return err
}
