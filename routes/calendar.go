package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"social-campaign-platform/internal/config"
	"social-campaign-platform/internal/platform"
	"social-campaign-platform/internal/schedule"
	"social-campaign-platform/middleware"
	"social-campaign-platform/models"
	"social-campaign-platform/utils"
)

func SetupCalendarRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, rdb *redis.Client) {
	authMW := middleware.NewAuthMiddleware(cfg, rdb)
	roleMW := middleware.NewRoleMiddleware()

	campaigns := mongoClient.Database(cfg.DBName).Collection("campaigns")

	// Month view over every launched campaign the caller can see. Entries
	// are bucketed by day of month; collisions are reported alongside so
	// the UI can flag overbooked slots.
	router.GET("/api/calendar", authMW.RequireAuth(), roleMW.ViewerGuard(), func(c *gin.Context) {
		now := time.Now().UTC()
		year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
		if err != nil {
			utils.RespondWithBadRequest(c, "Year must be a number", nil)
			return
		}
		monthNum, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
		if err != nil || monthNum < 1 || monthNum > 12 {
			utils.RespondWithBadRequest(c, "Month must be between 1 and 12", nil)
			return
		}
		month := time.Month(monthNum)

		filter := bson.M{"status": bson.M{"$ne": models.CampaignStatusFailed}}
		if !middleware.IsAdmin(c) {
			filter["user_id"] = middleware.GetUserID(c)
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		cursor, err := campaigns.Find(ctx, filter)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load campaigns", nil)
			return
		}
		defer cursor.Close(ctx)

		var entries []schedule.Entry
		for cursor.Next(ctx) {
			var campaign models.Campaign
			if err := cursor.Decode(&campaign); err != nil {
				continue
			}
			for _, e := range campaign.Entries {
				id, perr := platform.Parse(e.Platform)
				if perr != nil {
					continue
				}
				entries = append(entries, schedule.Entry{
					ID:       e.EntryID,
					Platform: id,
					Content:  e.Content.Title,
					At:       e.PublishAt,
					Approved: true,
				})
			}
		}
		if err := cursor.Err(); err != nil {
			utils.RespondWithInternalError(c, "Failed to read campaigns", nil)
			return
		}

		buckets := schedule.MonthBuckets(entries, year, month)

		// Only report collisions inside the requested month
		var monthEntries []schedule.Entry
		for _, dayEntries := range buckets {
			monthEntries = append(monthEntries, dayEntries...)
		}

		c.JSON(http.StatusOK, gin.H{
			"year":       year,
			"month":      int(month),
			"days":       buckets,
			"collisions": schedule.Collisions(monthEntries),
		})
	})
}
