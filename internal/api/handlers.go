package api

import (
	"Mnemo/internal/memory/service"
	"Mnemo/internal/memory/store"
	"Mnemo/internal/models"
	"Mnemo/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// API provides handlers for the memory service.
type API struct {
	service *service.MemoryService
	logger  *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(service *service.MemoryService, logger *logger.Logger) *API {
	return &API{
		service: service,
		logger:  logger,
	}
}

// StoreMemoryHandler handles the submission of a single candidate fact.
func (a *API) StoreMemoryHandler(c *gin.Context) {
	var req service.StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	result := a.service.StoreUserMemory(c.Request.Context(), req)
	c.JSON(statusCodeFor(result), result)
}

// StoreBatchRequest is the JSON body for a batch submission.
type StoreBatchRequest struct {
	UserID string                 `json:"user_id" binding:"required"`
	Facts  []service.StoreRequest `json:"facts" binding:"required"`
}

// StoreBatchHandler handles a batch of candidate facts from one turn.
// The response results array is index-aligned with the submitted facts.
func (a *API) StoreBatchHandler(c *gin.Context) {
	var req StoreBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	results := a.service.StoreBatch(c.Request.Context(), req.UserID, req.Facts)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ListMemoriesHandler returns all stored facts for a user.
func (a *API) ListMemoriesHandler(c *gin.Context) {
	userID := c.Param("user_id")

	facts, err := a.service.ListMemories(c.Request.Context(), userID)
	if err != nil {
		a.logger.WithUser(userID).WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to list memories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve memories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"memories": facts})
}

// DeleteMemoryHandler removes one fact by memory ID.
func (a *API) DeleteMemoryHandler(c *gin.Context) {
	userID := c.Param("user_id")
	memoryID := c.Param("memory_id")

	err := a.service.DeleteMemory(c.Request.Context(), userID, memoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "memory not found"})
			return
		}
		a.logger.WithUser(userID).WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to delete memory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete memory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "memory deleted"})
}

// ReconcileHandler triggers a local-vs-graph consistency check for a user.
func (a *API) ReconcileHandler(c *gin.Context) {
	userID := c.Param("user_id")

	report, err := a.service.Reconcile(c.Request.Context(), userID)
	if err != nil {
		a.logger.WithUser(userID).WithError(models.ErrorInfo{Message: err.Error()}).Error("reconciliation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// HealthHandler reports service health, including the graph pipeline state.
// The service is healthy even when the graph side is down; local writes still
// succeed in that state.
func (a *API) HealthHandler(c *gin.Context) {
	resp := gin.H{"status": "ok"}

	pipeline, err := a.service.GraphStatus(c.Request.Context())
	if err != nil {
		resp["graph"] = gin.H{"reachable": false}
	} else {
		resp["graph"] = gin.H{
			"reachable": true,
			"busy":      pipeline.Busy,
			"doc_count": pipeline.DocCount,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// statusCodeFor maps a pipeline result onto an HTTP status. Duplicate and
// combined-statement rejections are successful pipeline outcomes, not errors.
func statusCodeFor(result *models.MemoryStorageResult) int {
	switch result.Status {
	case models.StatusSuccess, models.StatusSuccessLocalOnly:
		return http.StatusCreated
	case models.StatusContentEmpty:
		return http.StatusBadRequest
	case models.StatusError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
