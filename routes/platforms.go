package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-campaign-platform/internal/platform"
	"social-campaign-platform/utils"
)

func SetupPlatformRoutes(router *gin.Engine) {
	group := router.Group("/api/platforms")

	// List every supported platform with its capabilities
	group.GET("", func(c *gin.Context) {
		out := make([]gin.H, 0)
		for _, id := range platform.All() {
			cap, err := platform.Lookup(id)
			if err != nil {
				continue
			}
			out = append(out, gin.H{
				"id":                  id,
				"display_name":        cap.DisplayName,
				"post_types":          cap.PostTypes,
				"features":            cap.Features,
				"max_description_len": cap.MaxDescriptionLen,
			})
		}
		c.JSON(http.StatusOK, gin.H{"platforms": out})
	})

	// Lookup a single platform
	group.GET("/:platform", func(c *gin.Context) {
		id, err := platform.Parse(c.Param("platform"))
		if err != nil {
			utils.RespondWithNotFound(c, "Unknown platform")
			return
		}
		cap, err := platform.Lookup(id)
		if err != nil {
			utils.RespondWithNotFound(c, "Unknown platform")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":                  id,
			"display_name":        cap.DisplayName,
			"post_types":          cap.PostTypes,
			"features":            cap.Features,
			"max_description_len": cap.MaxDescriptionLen,
		})
	})
}
