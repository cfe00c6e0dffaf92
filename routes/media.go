package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"social-campaign-platform/internal/config"
	"social-campaign-platform/middleware"
	"social-campaign-platform/services"
	"social-campaign-platform/utils"
)

func SetupMediaRoutes(router *gin.Engine, cfg *config.Config, rdb *redis.Client) {
	authMW := middleware.NewAuthMiddleware(cfg, rdb)
	previews := services.NewLinkPreviewService()

	// Preview the page behind a media URL before attaching it to a draft
	router.POST("/api/media/preview", authMW.RequireAuth(), func(c *gin.Context) {
		var req struct {
			URL string `json:"url" binding:"required,url"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		preview, err := previews.Fetch(c.Request.Context(), req.URL)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadGateway, "preview_failed",
				"Could not fetch a preview for that URL", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, preview)
	})
}
