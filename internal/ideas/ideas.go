// Package ideas provides the content-idea library the wizard selects from.
package ideas

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-campaign-platform/models"
)

// ErrNotFound is returned by every Source when no idea has the requested
// id, regardless of the backing store.
var ErrNotFound = errors.New("content idea not found")

// Source yields the selectable content ideas. Implementations may filter by
// content type and tag; empty filter values mean "any".
type Source interface {
	List(ctx context.Context, contentType, tag string) ([]models.ContentIdea, error)
	Get(ctx context.Context, ideaID int) (*models.ContentIdea, error)
}

// MongoSource reads ideas from the content_ideas collection.
type MongoSource struct {
	col *mongo.Collection
}

func NewMongoSource(db *mongo.Database) *MongoSource {
	return &MongoSource{col: db.Collection("content_ideas")}
}

func (s *MongoSource) List(ctx context.Context, contentType, tag string) ([]models.ContentIdea, error) {
	filter := bson.M{}
	if contentType != "" {
		filter["content_type"] = contentType
	}
	if tag != "" {
		filter["tags"] = tag
	}

	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "idea_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.ContentIdea
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoSource) Get(ctx context.Context, ideaID int) (*models.ContentIdea, error) {
	var idea models.ContentIdea
	err := s.col.FindOne(ctx, bson.M{"idea_id": ideaID}).Decode(&idea)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

// StaticSource serves a fixed in-memory library. Used by the seeder and in
// tests, where a database is overkill.
type StaticSource struct {
	ideas []models.ContentIdea
}

func NewStaticSource(ideas []models.ContentIdea) *StaticSource {
	if ideas == nil {
		ideas = SeedLibrary()
	}
	return &StaticSource{ideas: ideas}
}

func (s *StaticSource) List(_ context.Context, contentType, tag string) ([]models.ContentIdea, error) {
	var out []models.ContentIdea
	for _, idea := range s.ideas {
		if contentType != "" && idea.ContentType != contentType {
			continue
		}
		if tag != "" && !containsTag(idea.Tags, tag) {
			continue
		}
		out = append(out, idea)
	}
	return out, nil
}

func (s *StaticSource) Get(_ context.Context, ideaID int) (*models.ContentIdea, error) {
	for _, idea := range s.ideas {
		if idea.IdeaID == ideaID {
			copy := idea
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SeedLibrary is the starter idea set installed by cmd/seed.
func SeedLibrary() []models.ContentIdea {
	now := time.Now().UTC()
	return []models.ContentIdea{
		{
			IdeaID:      1,
			Title:       "5 Tips",
			Description: "Save money.",
			ContentType: models.ContentTypeText,
			Tags:        []string{"finance"},
			CreatedAt:   now,
		},
		{
			IdeaID:      2,
			Title:       "Behind the Scenes",
			Description: "A day in the life of our team, from morning standup to evening wrap-up.",
			ContentType: models.ContentTypeVideo,
			Tags:        []string{"culture", "team"},
			MediaRef:    "https://cdn.example.com/bts-teaser.mp4",
			Duration:    "0:45",
			CreatedAt:   now,
		},
		{
			IdeaID:      3,
			Title:       "Customer Spotlight",
			Description: "How one customer cut onboarding time in half using our product.",
			ContentType: models.ContentTypeImage,
			Tags:        []string{"customers", "casestudy"},
			MediaRef:    "https://cdn.example.com/spotlight.png",
			CreatedAt:   now,
		},
		{
			IdeaID:      4,
			Title:       "Trending Tags This Week",
			Description: "",
			ContentType: models.ContentTypeHashtag,
			Tags:        []string{"trends"},
			Hashtags:    []string{"MondayMotivation", "SmallBusiness", "GrowthMindset"},
			CreatedAt:   now,
		},
		{
			IdeaID:      5,
			Title:       "Product Update: Scheduling 2.0",
			Description: "Our new calendar makes planning a month of content take minutes, not hours.",
			ContentType: models.ContentTypeText,
			Tags:        []string{"product", "announcement"},
			CreatedAt:   now,
		},
	}
}
