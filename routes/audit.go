package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"

	"social-campaign-platform/internal/config"
	"social-campaign-platform/middleware"
	"social-campaign-platform/models"
	"social-campaign-platform/utils"
)

func SetupAuditRoutes(router *gin.Engine, cfg *config.Config, auditor *models.AuditLogger, rdb *redis.Client) {
	authMW := middleware.NewAuthMiddleware(cfg, rdb)
	roleMW := middleware.NewRoleMiddleware()

	group := router.Group("/api/admin/audit")
	group.Use(authMW.RequireAuth(), roleMW.AdminGuard())

	// Query audit logs with filters and pagination
	group.GET("", func(c *gin.Context) {
		filter := bson.M{}
		if userID := c.Query("user_id"); userID != "" {
			filter["user_id"] = userID
		}
		if resource := c.Query("resource"); resource != "" {
			filter["resource"] = resource
		}
		if action := c.Query("action"); action != "" {
			filter["action"] = action
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
		if page < 1 {
			page = 1
		}
		if pageSize < 1 || pageSize > 500 {
			pageSize = 50
		}

		events, total, err := auditor.QueryAuditLogs(filter, page, pageSize)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to query audit logs", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"events":    events,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		})
	})

	// Verify the hash chain for one user's audit history
	group.GET("/verify/:user_id", func(c *gin.Context) {
		valid, err := auditor.VerifyChain(c.Param("user_id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to verify audit chain", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.Param("user_id"),
			"valid":   valid,
		})
	})
}
