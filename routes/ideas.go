package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"social-campaign-platform/internal/config"
	"social-campaign-platform/internal/ideas"
	"social-campaign-platform/middleware"
	"social-campaign-platform/models"
	"social-campaign-platform/utils"
)

func SetupIdeaRoutes(router *gin.Engine, cfg *config.Config, source ideas.Source, rdb *redis.Client) {
	authMW := middleware.NewAuthMiddleware(cfg, rdb)

	group := router.Group("/api/ideas")
	group.Use(authMW.RequireAuth())

	// List ideas, optionally filtered by content type and tag
	group.GET("", func(c *gin.Context) {
		contentType := c.Query("content_type")
		tag := c.Query("tag")

		if contentType != "" {
			switch contentType {
			case models.ContentTypeVideo, models.ContentTypeImage, models.ContentTypeText, models.ContentTypeHashtag:
			default:
				utils.RespondWithBadRequest(c, "Unknown content type", gin.H{"content_type": contentType})
				return
			}
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		list, err := source.List(ctx, contentType, tag)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load ideas", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"ideas": list, "count": len(list)})
	})

	// Fetch a single idea by its numeric ID
	group.GET("/:idea_id", func(c *gin.Context) {
		ideaID, err := strconv.Atoi(c.Param("idea_id"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Idea ID must be a number", nil)
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		idea, err := source.Get(ctx, ideaID)
		if errors.Is(err, ideas.ErrNotFound) {
			utils.RespondWithNotFound(c, "Idea not found")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load idea", nil)
			return
		}

		c.JSON(http.StatusOK, idea)
	})
}
