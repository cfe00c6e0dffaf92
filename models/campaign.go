package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign lifecycle. A campaign is created at launch time from a completed
// wizard session, its entries are published one by one by the worker, and it
// becomes completed once every entry has been posted (or failed terminally).
const (
	CampaignStatusLaunching = "launching"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusCompleted = "completed"
	CampaignStatusFailed    = "failed"
)

const (
	EntryStatusScheduled = "scheduled"
	EntryStatusPublished = "published"
	EntryStatusFailed    = "failed"
)

// CampaignEntry is one approved schedule slot baked into a launched
// campaign: a single platform post at a single time.
type CampaignEntry struct {
	EntryID     string     `bson:"entry_id" json:"entry_id"`
	Platform    string     `bson:"platform" json:"platform"`
	Content     Draft      `bson:"content" json:"content"`
	PublishAt   time.Time  `bson:"publish_at" json:"publish_at"`
	Status      string     `bson:"status" json:"status"`
	PublishedAt time.Time  `bson:"published_at,omitempty" json:"published_at,omitempty"`
	Error       string     `bson:"error,omitempty" json:"error,omitempty"`
}

// Campaign is the durable record of a launched wizard session. The session
// itself is ephemeral (Redis, TTL); launching is the point where state
// crosses into MongoDB.
type Campaign struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  string             `bson:"session_id" json:"session_id"`
	UserID     string             `bson:"user_id" json:"user_id"`
	Name       string             `bson:"name" json:"name"`
	Platforms  []string           `bson:"platforms" json:"platforms"`
	Drafts     map[string]Draft   `bson:"drafts" json:"drafts"`
	Entries    []CampaignEntry    `bson:"entries" json:"entries"`
	Status     string             `bson:"status" json:"status"`
	LaunchedAt time.Time          `bson:"launched_at" json:"launched_at"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
