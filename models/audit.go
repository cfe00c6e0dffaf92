package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditEvent represents an immutable audit log entry. Entries are hash
// chained per user so tampering with stored history is detectable.
type AuditEvent struct {
	ID           string                 `bson:"_id,omitempty"`
	Timestamp    time.Time              `bson:"timestamp"`
	UserID       string                 `bson:"user_id"`
	Action       string                 `bson:"action"`   // CREATE, READ, UPDATE, DELETE
	Resource     string                 `bson:"resource"` // session, draft, schedule, campaign, idea, user
	ResourceID   string                 `bson:"resource_id"`
	IPAddress    string                 `bson:"ip_address"`
	UserAgent    string                 `bson:"user_agent"`
	RequestID    string                 `bson:"request_id"`
	Success      bool                   `bson:"success"`
	ErrorMessage string                 `bson:"error_message,omitempty"`
	Changes      map[string]interface{} `bson:"changes,omitempty"`
	PreviousHash string                 `bson:"previous_hash"`
	CurrentHash  string                 `bson:"current_hash"`
	CreatedAt    time.Time              `bson:"created_at"`
}

// ComputeHash computes the chain hash of this audit event.
func (e *AuditEvent) ComputeHash() string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%t|%s",
		e.Timestamp.Format(time.RFC3339Nano),
		e.UserID,
		e.Action,
		e.Resource,
		e.ResourceID,
		e.Success,
		e.PreviousHash,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// AuditLogger handles immutable audit logging.
type AuditLogger struct {
	col        *mongo.Collection
	lastHashMu sync.RWMutex
	lastHashes map[string]string // userID -> last hash
}

// NewAuditLogger creates a new audit logger over the audit_logs collection.
func NewAuditLogger(db *mongo.Database) *AuditLogger {
	col := db.Collection("audit_logs")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "resource", Value: 1},
				{Key: "resource_id", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "action", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "request_id", Value: 1}},
		},
	}

	col.Indexes().CreateMany(context.Background(), indexes)

	return &AuditLogger{
		col:        col,
		lastHashes: make(map[string]string),
	}
}

// Log logs an audit event. Insert-only, never updated.
func (al *AuditLogger) Log(event *AuditEvent) error {
	al.lastHashMu.Lock()
	defer al.lastHashMu.Unlock()

	event.PreviousHash = al.lastHashes[event.UserID]
	event.Timestamp = time.Now().UTC()
	event.CreatedAt = time.Now().UTC()
	event.ID = fmt.Sprintf("%d_%s", time.Now().UnixNano(), event.UserID)
	event.CurrentHash = event.ComputeHash()

	ctx := context.Background()
	_, err := al.col.InsertOne(ctx, event)
	if err != nil {
		log.Printf("Failed to log audit event: %v", err)
		return err
	}

	al.lastHashes[event.UserID] = event.CurrentHash
	return nil
}

// LogAsync logs an audit event without blocking the response path.
func (al *AuditLogger) LogAsync(event *AuditEvent) {
	go func() {
		if err := al.Log(event); err != nil {
			log.Printf("Async audit logging failed: %v", err)
		}
	}()
}

// VerifyChain verifies the integrity of the audit chain for a user.
func (al *AuditLogger) VerifyChain(userID string) (bool, error) {
	ctx := context.Background()
	cursor, err := al.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		return false, err
	}
	defer cursor.Close(ctx)

	var previousHash string
	eventCount := 0

	for cursor.Next(ctx) {
		var event AuditEvent
		if err := cursor.Decode(&event); err != nil {
			return false, err
		}

		eventCount++

		if eventCount > 1 && event.PreviousHash != previousHash {
			log.Printf("Audit chain broken at event %s - previous hash mismatch", event.ID)
			return false, nil
		}

		if event.CurrentHash != event.ComputeHash() {
			log.Printf("Audit event hash mismatch at %s", event.ID)
			return false, nil
		}

		previousHash = event.CurrentHash
	}

	return true, nil
}

// QueryAuditLogs queries audit logs with filters and pagination.
func (al *AuditLogger) QueryAuditLogs(filter bson.M, page, pageSize int) ([]AuditEvent, int64, error) {
	ctx := context.Background()

	total, err := al.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	cursor, err := al.col.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetSkip(int64((page-1)*pageSize)).
			SetLimit(int64(pageSize)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var events []AuditEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
