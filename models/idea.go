package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content type of an idea. Hashtag ideas carry a curated hashtag list
// instead of body copy.
const (
	ContentTypeVideo   = "video"
	ContentTypeImage   = "image"
	ContentTypeText    = "text"
	ContentTypeHashtag = "hashtag"
)

// ContentIdea is a reusable seed that the template engine expands into
// per-platform drafts. Ideas are read-only once created; the wizard only
// ever references them.
type ContentIdea struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IdeaID      int                `bson:"idea_id" json:"idea_id"`
	Title       string             `bson:"title" json:"title" binding:"required"`
	Description string             `bson:"description" json:"description"`
	ContentType string             `bson:"content_type" json:"content_type" binding:"required,oneof=video image text hashtag"`
	Tags        []string           `bson:"tags" json:"tags"`
	Hashtags    []string           `bson:"hashtags,omitempty" json:"hashtags,omitempty"`
	MediaRef    string             `bson:"media_ref,omitempty" json:"media_ref,omitempty"`
	Duration    string             `bson:"duration,omitempty" json:"duration,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
