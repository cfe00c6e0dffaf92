package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-campaign-platform/internal/config"
	"social-campaign-platform/middleware"
	"social-campaign-platform/models"
	"social-campaign-platform/services"
	"social-campaign-platform/utils"
)

func SetupCampaignRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, rdb *redis.Client) {
	authMW := middleware.NewAuthMiddleware(cfg, rdb)
	roleMW := middleware.NewRoleMiddleware()

	campaigns := mongoClient.Database(cfg.DBName).Collection("campaigns")
	exportService := services.NewExportService(campaigns)

	group := router.Group("/api/campaigns")
	group.Use(authMW.RequireAuth(), roleMW.ViewerGuard())

	// List launched campaigns, newest first
	group.GET("", func(c *gin.Context) {
		filter := bson.M{}
		if !middleware.IsAdmin(c) {
			filter["user_id"] = middleware.GetUserID(c)
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		cursor, err := campaigns.Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "launched_at", Value: -1}}).SetLimit(100))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load campaigns", nil)
			return
		}
		defer cursor.Close(ctx)

		var list []models.Campaign
		if err := cursor.All(ctx, &list); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode campaigns", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"campaigns": list, "count": len(list)})
	})

	// Fetch one campaign by its originating session ID
	group.GET("/:session_id", func(c *gin.Context) {
		filter := bson.M{"session_id": c.Param("session_id")}
		if !middleware.IsAdmin(c) {
			filter["user_id"] = middleware.GetUserID(c)
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		var campaign models.Campaign
		err := campaigns.FindOne(ctx, filter).Decode(&campaign)
		if err == mongo.ErrNoDocuments {
			utils.RespondWithNotFound(c, "Campaign not found")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load campaign", nil)
			return
		}

		c.JSON(http.StatusOK, campaign)
	})

	// Export campaigns as JSON or an Excel workbook
	group.POST("/export", func(c *gin.Context) {
		var req services.ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		claims := middleware.GetClaims(c)
		if claims == nil {
			utils.RespondWithUnauthorized(c, "Authentication required")
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		data, err := exportService.BuildExportData(ctx, &req, claims)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build export", gin.H{"error": err.Error()})
			return
		}

		if err := exportService.StreamExport(c, data, req.Format); err != nil {
			utils.RespondWithInternalError(c, "Failed to stream export", gin.H{"error": err.Error()})
			return
		}
	})
}
