package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"social-campaign-platform/internal/auth"
	"social-campaign-platform/internal/config"
	"social-campaign-platform/utils"
)

type AuthMiddleware struct {
	config *config.Config
	rdb    *redis.Client
}

func NewAuthMiddleware(cfg *config.Config, rdb *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		config: cfg,
		rdb:    rdb,
	}
}

func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		// Try to get access token from Authorization header
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			tokenString = utils.ExtractTokenFromHeader(authHeader)
		}

		// If no header token, try access_token cookie
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			utils.RespondWithUnauthorized(c, "Authentication token is required")
			c.Abort()
			return
		}

		claims, err := auth.ValidateAccessToken(tokenString, a.rdb)
		if err != nil {
			// Try to auto-refresh using refresh token
			if refreshToken, cookieErr := c.Cookie("refresh_token"); cookieErr == nil && refreshToken != "" {
				refreshClaims, refreshErr := auth.ValidateRefreshToken(refreshToken, a.rdb)
				if refreshErr == nil {
					_ = auth.RevokeToken(refreshClaims.ID, true, a.rdb)

					tokenPair, issueErr := auth.IssueTokenPair(refreshClaims.UserID, refreshClaims.Role, a.rdb)
					if issueErr == nil {
						secure := a.config.GinMode == "release"
						c.SetSameSite(http.SameSiteLaxMode)
						c.SetCookie("access_token", tokenPair.AccessToken,
							int(1*time.Hour.Seconds()), "/", "", secure, true)
						c.SetCookie("refresh_token", tokenPair.RefreshToken,
							int(7*24*time.Hour.Seconds()), "/", "", secure, true)

						if freshClaims, valErr := auth.ValidateAccessToken(tokenPair.AccessToken, a.rdb); valErr == nil {
							claims = freshClaims
						}
					}
				}
			}

			if claims == nil {
				errorCode := "session_expired"
				refreshToken, refreshErr := c.Cookie("refresh_token")
				if refreshErr == nil && refreshToken != "" {
					if _, validationErr := auth.ValidateRefreshToken(refreshToken, a.rdb); validationErr != nil {
						errorCode = "refresh_token_expired"
					} else {
						errorCode = "token_refresh_failed"
					}
				}

				utils.RespondWithError(c, http.StatusUnauthorized, errorCode,
					"Your session has expired. Please log in again.",
					gin.H{"error": err.Error()})
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("claims", claims)

		c.Next()
	})
}

func (a *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			tokenString = utils.ExtractTokenFromHeader(authHeader)
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString != "" {
			if claims, err := auth.ValidateAccessToken(tokenString, a.rdb); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("role", claims.Role)
				c.Set("claims", claims)
				c.Set("authenticated", true)
			}
		}

		c.Next()
	})
}

// Helper function to check if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_id")
	return exists
}

// Helper function to get user ID from context
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// Helper function to get role from context
func GetRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}

// GetClaims returns the parsed token claims stored by RequireAuth
func GetClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get("claims"); exists {
		if cl, ok := claims.(*auth.Claims); ok {
			return cl
		}
	}
	return nil
}
