package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"social-campaign-platform/internal/config"
	"social-campaign-platform/internal/enhance"
	"social-campaign-platform/internal/ideas"
	"social-campaign-platform/internal/platform"
	"social-campaign-platform/internal/queue"
	"social-campaign-platform/internal/schedule"
	"social-campaign-platform/internal/telemetry"
	"social-campaign-platform/internal/wizard"
	"social-campaign-platform/middleware"
	"social-campaign-platform/models"
	"social-campaign-platform/services"
	"social-campaign-platform/utils"
)

// WizardDeps bundles what the wizard endpoints need.
type WizardDeps struct {
	Store       *services.SessionStore
	Ideas       ideas.Source
	Enhancer    enhance.Backend
	Queue       *asynq.Client
	MongoClient *mongo.Client
	Metrics     *telemetry.Metrics
}

func SetupWizardRoutes(router *gin.Engine, cfg *config.Config, deps WizardDeps, rdb *redis.Client) {
	authMW := middleware.NewAuthMiddleware(cfg, rdb)
	roleMW := middleware.NewRoleMiddleware()

	campaigns := deps.MongoClient.Database(cfg.DBName).Collection("campaigns")

	group := router.Group("/api/wizard/sessions")
	group.Use(authMW.RequireAuth(), roleMW.MarketerGuard())

	// loadOwned fetches a session and enforces ownership. A nil return means
	// the response has already been written.
	loadOwned := func(c *gin.Context) *wizard.Session {
		sess, err := deps.Store.Get(c.Request.Context(), c.Param("session_id"))
		if err == services.ErrSessionNotFound {
			utils.RespondWithNotFound(c, "Session not found or expired")
			return nil
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load session", nil)
			return nil
		}
		if sess.UserID != middleware.GetUserID(c) && !middleware.IsAdmin(c) {
			utils.RespondWithForbidden(c, "Session belongs to another user")
			return nil
		}
		return sess
	}

	save := func(c *gin.Context, sess *wizard.Session) bool {
		if err := deps.Store.Save(c.Request.Context(), sess); err != nil {
			utils.RespondWithInternalError(c, "Failed to persist session", nil)
			return false
		}
		return true
	}

	// respondStepError renders gate failures as 422 and everything else as 400.
	respondStepError := func(c *gin.Context, err error) {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			utils.RespondWithValidationErrors(c, "Step validation failed", verr.Fields)
			return
		}
		utils.RespondWithBadRequest(c, err.Error(), nil)
	}

	// Create a new wizard session
	group.POST("", func(c *gin.Context) {
		sess := wizard.NewSession(middleware.GetUserID(c))
		if !save(c, sess) {
			return
		}
		if deps.Metrics != nil {
			deps.Metrics.SessionsCreated.Add(c.Request.Context(), 1)
		}
		c.JSON(http.StatusCreated, sess)
	})

	// List the caller's sessions
	group.GET("", func(c *gin.Context) {
		sessions, err := deps.Store.ListUserSessions(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list sessions", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
	})

	group.GET("/:session_id", func(c *gin.Context) {
		sess := loadOwned(c)
		if sess == nil {
			return
		}
		c.JSON(http.StatusOK, sess)
	})

	// Abandon a session
	group.DELETE("/:session_id", func(c *gin.Context) {
		sess := loadOwned(c)
		if sess == nil {
			return
		}
		if err := deps.Store.Delete(c.Request.Context(), sess.ID); err != nil {
			utils.RespondWithInternalError(c, "Failed to delete session", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
	})

	// Replace the platform selection
	group.PUT("/:session_id/platforms", func(c *gin.Context) {
		var req struct {
			Platforms []string `json:"platforms" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		sess := loadOwned(c)
		if sess == nil {
			return
		}

		ids := make([]platform.ID, 0, len(req.Platforms))
		for _, raw := range req.Platforms {
			id, err := platform.Parse(raw)
			if err != nil {
				utils.RespondWithBadRequest(c, "Unknown platform", gin.H{"platform": raw})
				return
			}
			ids = append(ids, id)
		}

		if err := sess.SetPlatforms(ids); err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}
		if !save(c, sess) {
			return
		}
		c.JSON(http.StatusOK, sess)
	})

	// Select a content idea, or skip to start from scratch
	group.PUT("/:session_id/idea", func(c *gin.Context) {
		var req struct {
			IdeaID int  `json:"idea_id"`
			Skip   bool `json:"skip"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		sess := loadOwned(c)
		if sess == nil {
			return
		}

		if req.Skip {
			sess.SkipIdea()
			if !save(c, sess) {
				return
			}
			c.JSON(http.StatusOK, sess)
			return
		}

		idea, err := deps.Ideas.Get(c.Request.Context(), req.IdeaID)
		if errors.Is(err, ideas.ErrNotFound) {
			utils.RespondWithNotFound(c, "Idea not found")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load idea", nil)
			return
		}

		if err := sess.SelectIdea(*idea); err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}
		if !save(c, sess) {
			return
		}
		c.JSON(http.StatusOK, sess)
	})

	// Patch one platform's draft
	group.PATCH("/:session_id/drafts/:platform", func(c *gin.Context) {
		var req struct {
			Field string `json:"field" binding:"required"`
			Value string `json:"value"`

			// Op distinguishes list mutations: set (default), add, remove.
			Op    string `json:"op"`
			Index int    `json:"index"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		id, err := platform.Parse(c.Param("platform"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Unknown platform", gin.H{"platform": c.Param("platform")})
			return
		}

		sess := loadOwned(c)
		if sess == nil {
			return
		}

		switch req.Field {
		case "hashtags":
			switch req.Op {
			case "add":
				err = sess.AddHashtag(id, req.Value)
			case "remove":
				err = sess.RemoveHashtag(id, req.Value)
			default:
				utils.RespondWithBadRequest(c, "Hashtag updates require op add or remove", nil)
				return
			}
		case "media":
			switch req.Op {
			case "add":
				err = sess.AddMedia(id, req.Value)
			case "remove":
				err = sess.RemoveMedia(id, req.Index)
			default:
				utils.RespondWithBadRequest(c, "Media updates require op add or remove", nil)
				return
			}
		default:
			err = sess.UpdateField(id, req.Field, req.Value)
		}

		if err != nil {
			respondStepError(c, err)
			return
		}
		if !save(c, sess) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"draft": sess.Drafts[id], "session": sess})
	})

	// Apply a natural-language enhancement to one platform's draft
	group.POST("/:session_id/drafts/:platform/enhance",
		middleware.EnhancementRateLimit(rdb, cfg),
		func(c *gin.Context) {
			var req struct {
				Instruction string `json:"instruction" binding:"required"`
				Async       bool   `json:"async"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
				return
			}

			id, err := platform.Parse(c.Param("platform"))
			if err != nil {
				utils.RespondWithBadRequest(c, "Unknown platform", gin.H{"platform": c.Param("platform")})
				return
			}

			sess := loadOwned(c)
			if sess == nil {
				return
			}
			draft, ok := sess.Drafts[id]
			if !ok {
				utils.RespondWithNotFound(c, "No draft for that platform")
				return
			}

			// Async variant hands the work to the queue; the client polls
			// the session for the updated draft.
			if req.Async {
				task, err := queue.NewAIEnhanceTask(sess.ID, string(id), req.Instruction)
				if err != nil {
					utils.RespondWithInternalError(c, "Failed to build enhance task", nil)
					return
				}
				if _, err := deps.Queue.EnqueueContext(c.Request.Context(), task); err != nil {
					utils.RespondWithInternalError(c, "Failed to enqueue enhancement", nil)
					return
				}
				c.JSON(http.StatusAccepted, gin.H{
					"queued":     true,
					"session_id": sess.ID,
					"platform":   id,
				})
				return
			}

			result, err := deps.Enhancer.Enhance(c.Request.Context(), enhance.Request{
				Draft:       draft,
				Instruction: req.Instruction,
				Platform:    id,
				AllDrafts:   sess.Drafts,
			})
			if err != nil {
				utils.RespondWithInternalError(c, "Enhancement failed", gin.H{"error": err.Error()})
				return
			}

			if result.NoOp() {
				c.JSON(http.StatusOK, gin.H{
					"applied": false,
					"message": "I don't understand that request",
					"draft":   draft,
				})
				return
			}

			sess.Drafts[id] = result.Draft
			if result.FanoutDrafts != nil {
				sess.ApplyFanout(result.FanoutDrafts)
			}
			if !save(c, sess) {
				return
			}
			if deps.Metrics != nil {
				deps.Metrics.EnhancementsApplied.Add(c.Request.Context(), 1)
			}

			c.JSON(http.StatusOK, gin.H{
				"applied":       true,
				"applied_rules": result.AppliedRules,
				"draft":         result.Draft,
				"session":       sess,
			})
		})

	// Step navigation
	group.POST("/:session_id/advance", func(c *gin.Context) {
		sess := loadOwned(c)
		if sess == nil {
			return
		}
		if err := sess.Advance(); err != nil {
			// Persist recorded validation errors before responding
			_ = deps.Store.Save(c.Request.Context(), sess)
			respondStepError(c, err)
			return
		}
		if !save(c, sess) {
			return
		}
		c.JSON(http.StatusOK, sess)
	})

	group.POST("/:session_id/retreat", func(c *gin.Context) {
		sess := loadOwned(c)
		if sess == nil {
			return
		}
		if err := sess.Retreat(); err != nil {
			respondStepError(c, err)
			return
		}
		if !save(c, sess) {
			return
		}
		c.JSON(http.StatusOK, sess)
	})

	group.POST("/:session_id/jump", func(c *gin.Context) {
		var req struct {
			Step int `json:"step"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		sess := loadOwned(c)
		if sess == nil {
			return
		}
		if err := sess.JumpTo(req.Step); err != nil {
			_ = deps.Store.Save(c.Request.Context(), sess)
			respondStepError(c, err)
			return
		}
		if !save(c, sess) {
			return
		}
		c.JSON(http.StatusOK, sess)
	})

	// Schedule entries
	group.POST("/:session_id/schedule", func(c *gin.Context) {
		var req struct {
			Platform string    `json:"platform" binding:"required"`
			Content  string    `json:"content"`
			At       time.Time `json:"at" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		id, err := platform.Parse(req.Platform)
		if err != nil {
			utils.RespondWithBadRequest(c, "Unknown platform", gin.H{"platform": req.Platform})
			return
		}

		sess := loadOwned(c)
		if sess == nil {
			return
		}
		if !sess.IsSelected(id) {
			utils.RespondWithBadRequest(c, "Platform is not part of this campaign", nil)
			return
		}

		content := req.Content
		if content == "" {
			content = sess.Drafts[id].Title
		}

		entry := schedule.Entry{
			ID:       uuid.NewString(),
			Platform: id,
			Content:  content,
			At:       req.At,
		}
		sess.Schedule.Add(entry)
		if !save(c, sess) {
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"entry":      entry,
			"collisions": schedule.Collisions(sess.Schedule.Entries),
		})
	})

	group.PATCH("/:session_id/schedule/:entry_id", func(c *gin.Context) {
		var req struct {
			Content string    `json:"content"`
			At      time.Time `json:"at"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		sess := loadOwned(c)
		if sess == nil {
			return
		}
		if err := sess.Schedule.Update(c.Param("entry_id"), req.Content, req.At); err != nil {
			if err == schedule.ErrEntryNotFound {
				utils.RespondWithNotFound(c, "Schedule entry not found")
				return
			}
			utils.RespondWithConflict(c, err.Error(), nil)
			return
		}
		if !save(c, sess) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"entries":    sess.Schedule.Entries,
			"collisions": schedule.Collisions(sess.Schedule.Entries),
		})
	})

	group.DELETE("/:session_id/schedule/:entry_id", func(c *gin.Context) {
		sess := loadOwned(c)
		if sess == nil {
			return
		}
		if err := sess.Schedule.Remove(c.Param("entry_id")); err != nil {
			if err == schedule.ErrEntryNotFound {
				utils.RespondWithNotFound(c, "Schedule entry not found")
				return
			}
			utils.RespondWithConflict(c, err.Error(), nil)
			return
		}
		if !save(c, sess) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": sess.Schedule.Entries})
	})

	group.POST("/:session_id/schedule/:entry_id/approve", func(c *gin.Context) {
		sess := loadOwned(c)
		if sess == nil {
			return
		}
		if err := sess.Schedule.Approve(c.Param("entry_id")); err != nil {
			utils.RespondWithNotFound(c, "Schedule entry not found")
			return
		}
		if !save(c, sess) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": sess.Schedule.Entries})
	})

	group.POST("/:session_id/schedule/approve-all", func(c *gin.Context) {
		sess := loadOwned(c)
		if sess == nil {
			return
		}
		sess.Schedule.ApproveAll()
		if !save(c, sess) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": sess.Schedule.Entries})
	})

	// Launch: persist the campaign and hand off to the worker
	group.POST("/:session_id/launch", func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		_ = c.ShouldBindJSON(&req)

		sess := loadOwned(c)
		if sess == nil {
			return
		}
		if err := sess.CanLaunch(); err != nil {
			respondStepError(c, err)
			return
		}

		name := req.Name
		if name == "" && sess.SelectedIdea != nil {
			name = sess.SelectedIdea.Title
		}
		if name == "" {
			name = "Campaign " + sess.ID[:8]
		}

		now := time.Now().UTC()
		platforms := make([]string, 0, len(sess.SelectedPlatforms))
		drafts := make(map[string]models.Draft, len(sess.Drafts))
		for _, id := range sess.SelectedPlatforms {
			platforms = append(platforms, string(id))
			drafts[string(id)] = sess.Drafts[id]
		}

		entries := make([]models.CampaignEntry, 0, len(sess.Schedule.Entries))
		for _, e := range sess.Schedule.Entries {
			entries = append(entries, models.CampaignEntry{
				EntryID:   e.ID,
				Platform:  string(e.Platform),
				Content:   sess.Drafts[e.Platform],
				PublishAt: e.At,
				Status:    models.EntryStatusScheduled,
			})
		}

		campaign := models.Campaign{
			SessionID:  sess.ID,
			UserID:     sess.UserID,
			Name:       name,
			Platforms:  platforms,
			Drafts:     drafts,
			Entries:    entries,
			Status:     models.CampaignStatusLaunching,
			LaunchedAt: now,
			CreatedAt:  sess.CreatedAt,
			UpdatedAt:  now,
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		if _, err := campaigns.InsertOne(ctx, campaign); err != nil {
			utils.RespondWithInternalError(c, "Failed to persist campaign", nil)
			return
		}

		task, err := queue.NewCampaignLaunchTask(sess.ID, sess.UserID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build launch task", nil)
			return
		}
		if _, err := deps.Queue.EnqueueContext(ctx, task); err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue launch task", nil)
			return
		}

		// The wizard is done with this session
		_ = deps.Store.Delete(c.Request.Context(), sess.ID)

		if deps.Metrics != nil {
			deps.Metrics.CampaignsLaunched.Add(c.Request.Context(), 1)
		}

		c.JSON(http.StatusAccepted, gin.H{
			"message":    "Campaign launched",
			"session_id": sess.ID,
			"name":       name,
			"entries":    len(entries),
		})
	})
}
