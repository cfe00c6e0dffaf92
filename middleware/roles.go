package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-campaign-platform/models"
)

type RoleMiddleware struct{}

func NewRoleMiddleware() *RoleMiddleware {
	return &RoleMiddleware{}
}

func (r *RoleMiddleware) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "unauthorized",
				"message":    "User role not found",
			})
			c.Abort()
			return
		}

		hasRole := false
		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error_code": "forbidden",
				"message":    "Insufficient permissions",
				"details": gin.H{
					"required_roles": allowedRoles,
					"user_role":      role,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	})
}

func (r *RoleMiddleware) AdminGuard() gin.HandlerFunc {
	return r.RequireRole(models.RoleAdmin)
}

// MarketerGuard allows users who can create and launch campaigns.
func (r *RoleMiddleware) MarketerGuard() gin.HandlerFunc {
	return r.RequireRole(models.RoleMarketer, models.RoleAdmin)
}

// ViewerGuard allows read-only access to calendars and campaign history.
func (r *RoleMiddleware) ViewerGuard() gin.HandlerFunc {
	return r.RequireRole(models.RoleViewer, models.RoleMarketer, models.RoleAdmin)
}

// Helper function to check if user is admin
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == models.RoleAdmin
}
