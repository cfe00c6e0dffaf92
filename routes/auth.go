package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"social-campaign-platform/internal/auth"
	"social-campaign-platform/internal/config"
	"social-campaign-platform/middleware"
	"social-campaign-platform/models"
	"social-campaign-platform/utils"
)

func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, rdb *redis.Client) {
	authGroup := router.Group("/api/auth")

	db := mongoClient.Database(cfg.DBName)
	usersCollection := db.Collection("users")

	setAuthCookies := func(c *gin.Context, pair *auth.TokenPair) {
		secure := cfg.GinMode == "release"
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("access_token", pair.AccessToken,
			int(time.Until(pair.AccessExp).Seconds()), "/", "", secure, true)
		c.SetCookie("refresh_token", pair.RefreshToken,
			int(time.Until(pair.RefreshExp).Seconds()), "/", "", secure, true)
	}

	// Register endpoint
	authGroup.POST("/register", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		var existingUser models.User
		if err := usersCollection.FindOne(ctx, bson.M{"username": req.Username}).Decode(&existingUser); err == nil {
			utils.RespondWithConflict(c, "Username already exists", nil)
			return
		}

		hashedPassword, err := utils.HashPassword(req.Password, cfg.BcryptCost)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to process password", nil)
			return
		}

		user := models.User{
			Username:     req.Username,
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hashedPassword,
			Role:         models.RoleMarketer,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		result, err := usersCollection.InsertOne(ctx, user)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create user", nil)
			return
		}

		userID := result.InsertedID.(primitive.ObjectID).Hex()

		pair, err := auth.IssueTokenPair(userID, user.Role, rdb)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate tokens", nil)
			return
		}
		setAuthCookies(c, pair)

		c.JSON(http.StatusCreated, models.TokenPairResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			AccessExp:    pair.AccessExp,
			RefreshExp:   pair.RefreshExp,
			User: models.UserInfo{
				ID:       userID,
				Username: user.Username,
				Name:     user.Name,
				Email:    user.Email,
				Role:     user.Role,
			},
		})
	})

	// Login endpoint
	authGroup.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		var user models.User
		if err := usersCollection.FindOne(ctx, bson.M{"username": req.Username}).Decode(&user); err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "invalid_credentials",
				"Invalid username or password", nil)
			return
		}

		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			utils.RespondWithError(c, http.StatusUnauthorized, "invalid_credentials",
				"Invalid username or password", nil)
			return
		}

		pair, err := auth.IssueTokenPair(user.ID.Hex(), user.Role, rdb)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate tokens", nil)
			return
		}
		setAuthCookies(c, pair)

		c.JSON(http.StatusOK, models.TokenPairResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			AccessExp:    pair.AccessExp,
			RefreshExp:   pair.RefreshExp,
			User: models.UserInfo{
				ID:       user.ID.Hex(),
				Username: user.Username,
				Name:     user.Name,
				Email:    user.Email,
				Role:     user.Role,
			},
		})
	})

	// Refresh token endpoint
	authGroup.POST("/refresh", func(c *gin.Context) {
		refreshToken, err := c.Cookie("refresh_token")
		if err != nil || refreshToken == "" {
			if header := c.GetHeader("Authorization"); header != "" {
				refreshToken = utils.ExtractTokenFromHeader(header)
			}
		}
		if refreshToken == "" {
			utils.RespondWithUnauthorized(c, "Refresh token required")
			return
		}

		claims, err := auth.ValidateRefreshToken(refreshToken, rdb)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid refresh token")
			return
		}

		// Rotate: revoke the used refresh token before issuing new ones
		_ = auth.RevokeToken(claims.ID, true, rdb)

		pair, err := auth.IssueTokenPair(claims.UserID, claims.Role, rdb)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate tokens", nil)
			return
		}
		setAuthCookies(c, pair)

		c.JSON(http.StatusOK, gin.H{
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
			"access_exp":    pair.AccessExp,
			"refresh_exp":   pair.RefreshExp,
		})
	})

	// Logout revokes every token belonging to the caller
	authMW := middleware.NewAuthMiddleware(cfg, rdb)
	authGroup.POST("/logout", authMW.RequireAuth(), func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if err := auth.RevokeAllUserTokens(userID, rdb); err != nil {
			utils.RespondWithInternalError(c, "Failed to revoke tokens", nil)
			return
		}

		c.SetCookie("access_token", "", -1, "/", "", false, true)
		c.SetCookie("refresh_token", "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	})
}
