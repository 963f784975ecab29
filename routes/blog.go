package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"blogcast-backend/internal/config"
	"blogcast-backend/internal/logger"
	"blogcast-backend/internal/media"
	"blogcast-backend/internal/queue"
	"blogcast-backend/internal/store"
	"blogcast-backend/internal/telemetry"
	"blogcast-backend/middleware"
	"blogcast-backend/models"
	"blogcast-backend/services"
	"blogcast-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func SetupBlogRoutes(
	router *gin.Engine,
	cfg *config.Config,
	st *store.Store,
	blogService *services.BlogService,
	exportService *services.ExportService,
	asynqClient *asynq.Client,
	metrics *telemetry.Metrics,
	authMiddleware *middleware.AuthMiddleware,
) {
	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())

	// Synchronous generation: the request blocks for the whole pipeline.
	api.POST("/generate", func(c *gin.Context) {
		var req models.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		userID := middleware.GetUserID(c)
		start := time.Now()

		post, err := blogService.Generate(c.Request.Context(), userID, req.Link)
		if err != nil {
			if metrics != nil {
				metrics.RecordPipeline(time.Since(start).Seconds(), "error")
			}
			respondPipelineError(c, err)
			return
		}

		if metrics != nil {
			metrics.RecordPipeline(time.Since(start).Seconds(), "success")
		}

		c.JSON(http.StatusOK, models.GenerateResponse{
			Content: post.GeneratedContent,
			Post:    *post,
		})
	})

	// Asynchronous generation: returns a job ID immediately, the worker
	// runs the pipeline.
	api.POST("/generate/async", func(c *gin.Context) {
		var req models.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		if err := media.ValidateLink(req.Link); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid_link",
				"Link must be a valid YouTube video URL", nil)
			return
		}

		userID := middleware.GetUserID(c)
		jobID := uuid.New().String()

		job, err := st.CreateJob(c.Request.Context(), jobID, userID, req.Link)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create generation job", nil)
			return
		}

		task, err := queue.NewGenerateBlogTask(jobID, userID, req.Link)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create generation job", nil)
			return
		}

		if _, err := asynqClient.Enqueue(task); err != nil {
			logger.Error("failed to enqueue generation task", "job_id", jobID, "error", err)
			utils.RespondWithError(c, http.StatusServiceUnavailable, "queue_unavailable",
				"Generation queue is unavailable, try again later", nil)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"job_id": job.ID,
			"status": job.Status,
		})
	})

	// Job status lookup
	api.GET("/jobs/:id", func(c *gin.Context) {
		job, err := st.GetJob(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondWithNotFound(c, "Job not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to load job", nil)
			return
		}

		if job.UserID != middleware.GetUserID(c) {
			utils.RespondWithForbidden(c, "You do not have access to this job")
			return
		}

		c.JSON(http.StatusOK, job)
	})

	// List the caller's posts, newest first
	api.GET("/blogs", func(c *gin.Context) {
		page, pageSize := paginationParams(c)

		posts, total, err := st.ListBlogPosts(c.Request.Context(), middleware.GetUserID(c), page, pageSize)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load blog posts", nil)
			return
		}

		c.JSON(http.StatusOK, models.BlogListResponse{
			Posts:    posts,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	})

	// Export all of the caller's posts as a downloadable file
	api.GET("/blogs/export", func(c *gin.Context) {
		format := c.DefaultQuery("format", "excel")

		result, err := exportService.ExportPosts(c.Request.Context(), middleware.GetUserID(c), format)
		if err != nil {
			if errors.Is(err, services.ErrUnsupportedFormat) {
				utils.RespondWithBadRequest(c, err.Error(), nil)
				return
			}
			utils.RespondWithInternalError(c, "Failed to export blog posts", nil)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
		c.Header("X-Record-Count", strconv.Itoa(result.RecordCount))
		c.Data(http.StatusOK, result.ContentType, result.Data)
	})

	// Post detail, owner only. The transcript is included here but not in
	// list responses.
	api.GET("/blogs/:id", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid blog post ID", nil)
			return
		}

		post, err := st.GetBlogPost(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondWithNotFound(c, "Blog post not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to load blog post", nil)
			return
		}

		if post.UserID != middleware.GetUserID(c) {
			utils.RespondWithForbidden(c, "You do not have access to this blog post")
			return
		}

		c.JSON(http.StatusOK, post)
	})
}

// respondPipelineError maps pipeline failures to HTTP statuses. Bad links
// and unreadable metadata are the caller's fault; failures of external
// collaborators surface as 502; storage failures stay 500.
func respondPipelineError(c *gin.Context, err error) {
	if errors.Is(err, media.ErrInvalidLink) {
		utils.RespondWithError(c, http.StatusBadRequest, "invalid_link",
			"Link must be a valid YouTube video URL", nil)
		return
	}

	var stageErr *services.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case services.StageMetadata:
			utils.RespondWithError(c, http.StatusBadRequest, "metadata_failed",
				"Could not fetch video metadata for this link",
				gin.H{"error": stageErr.Err.Error()})
		case services.StagePersistence:
			utils.RespondWithInternalError(c, "Failed to save the generated blog post", nil)
		default:
			utils.RespondWithBadGateway(c,
				fmt.Sprintf("The %s step failed, no blog post was created", stageErr.Stage),
				gin.H{"stage": stageErr.Stage, "error": stageErr.Err.Error()})
		}
		return
	}

	utils.RespondWithInternalError(c, "Blog generation failed", nil)
}

func paginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize
}
