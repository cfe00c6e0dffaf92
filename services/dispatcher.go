package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"social-campaign-platform/internal/logger"
	"social-campaign-platform/internal/queue"
	"social-campaign-platform/models"
)

// Dispatcher periodically scans scheduled campaigns for entries whose publish
// time has arrived and enqueues a publish task for each. Entries already
// enqueued are skipped by the publish handler's idempotency check, so a
// rescan after a crash is harmless.
type Dispatcher struct {
	scheduler *gocron.Scheduler
	db        *mongo.Database
	client    *asynq.Client
	interval  time.Duration
	cancel    context.CancelFunc
	ctx       context.Context
}

func NewDispatcher(db *mongo.Database, client *asynq.Client, interval time.Duration) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &Dispatcher{
		scheduler: s,
		db:        db,
		client:    client,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (d *Dispatcher) Start() error {
	_, err := d.scheduler.Every(d.interval).Tag("publish-scan").Do(func() {
		if err := d.scanDue(d.ctx); err != nil {
			logger.Error("Publish scan failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	d.scheduler.StartAsync()
	logger.Info("Dispatcher started", "interval", d.interval.String())
	return nil
}

func (d *Dispatcher) Stop() {
	d.scheduler.Stop()
	if d.cancel != nil {
		d.cancel()
	}
}

func (d *Dispatcher) scanDue(ctx context.Context) error {
	now := time.Now().UTC()
	col := d.db.Collection("campaigns")

	cursor, err := col.Find(ctx, bson.M{
		"status": models.CampaignStatusScheduled,
		"entries": bson.M{"$elemMatch": bson.M{
			"status":     models.EntryStatusScheduled,
			"publish_at": bson.M{"$lte": now},
		}},
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	enqueued := 0
	for cursor.Next(ctx) {
		var campaign models.Campaign
		if err := cursor.Decode(&campaign); err != nil {
			logger.Warn("Skipping undecodable campaign", "error", err)
			continue
		}

		for _, entry := range campaign.Entries {
			if entry.Status != models.EntryStatusScheduled || entry.PublishAt.After(now) {
				continue
			}
			task, err := queue.NewPostPublishTask(campaign.SessionID, entry.EntryID, entry.Platform)
			if err != nil {
				logger.Error("Failed to build publish task", "entry_id", entry.EntryID, "error", err)
				continue
			}
			// Unique window suppresses duplicate enqueues between scans.
			_, err = d.client.EnqueueContext(ctx, task, asynq.Unique(2*d.interval))
			if err != nil && err != asynq.ErrDuplicateTask {
				logger.Error("Failed to enqueue publish task", "entry_id", entry.EntryID, "error", err)
				continue
			}
			if err == nil {
				enqueued++
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	if enqueued > 0 {
		logger.Info("Enqueued due posts", "count", enqueued)
	}
	return nil
}
