// Seeds the content idea library and an initial admin user. Safe to run
// repeatedly: existing documents are left alone.
package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"social-campaign-platform/internal/config"
	"social-campaign-platform/internal/ideas"
	"social-campaign-platform/internal/logger"
	"social-campaign-platform/models"
	"social-campaign-platform/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	db := mongoClient.Database(cfg.DBName)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seedIdeas(ctx, db)
	seedAdmin(ctx, db, cfg)
}

func seedIdeas(ctx context.Context, db *mongo.Database) {
	col := db.Collection("content_ideas")

	inserted := 0
	for _, idea := range ideas.SeedLibrary() {
		var existing models.ContentIdea
		err := col.FindOne(ctx, bson.M{"idea_id": idea.IdeaID}).Decode(&existing)
		if err == nil {
			continue
		}
		if err != mongo.ErrNoDocuments {
			log.Fatal("Failed to check existing idea:", err)
		}

		if _, err := col.InsertOne(ctx, idea); err != nil {
			log.Fatal("Failed to insert idea:", err)
		}
		inserted++
	}

	logger.Info("Idea library seeded", "inserted", inserted)
}

func seedAdmin(ctx context.Context, db *mongo.Database, cfg *config.Config) {
	col := db.Collection("users")

	username := "admin"
	var existing models.User
	if err := col.FindOne(ctx, bson.M{"username": username}).Decode(&existing); err == nil {
		logger.Info("Admin user already exists", "username", username)
		return
	}

	password, err := utils.GenerateSecureRandomString(20)
	if err != nil {
		log.Fatal("Failed to generate admin password:", err)
	}

	hash, err := utils.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatal("Failed to hash admin password:", err)
	}

	user := models.User{
		Username:     username,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if _, err := col.InsertOne(ctx, user); err != nil {
		log.Fatal("Failed to insert admin user:", err)
	}

	// Printed once at creation; change it after first login.
	logger.Info("Admin user created", "username", username, "password", password)
}
