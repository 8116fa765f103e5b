// Package api exposes the activity framework over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "interactive-sessions/internal/common/errors"
	"interactive-sessions/internal/common/logger"
	"interactive-sessions/internal/domain"
	"interactive-sessions/internal/orchestrator"
	"interactive-sessions/pkg/lifecycle"
	"interactive-sessions/pkg/registry"
)

type Handler struct {
	Service  *orchestrator.Service
	Registry *registry.Registry
	Log      logger.Logger
}

// writeError maps framework errors onto transport statuses and serializes the
// structured error document. Unexpected errors are logged and masked.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		c.JSON(status, gin.H{"error": appErr})
		return
	}

	h.Log.WithError(err).Error("request failed", map[string]interface{}{
		"path": c.FullPath(),
	})
	c.JSON(status, gin.H{"error": gin.H{"message": "internal server error"}})
}

type createActivityRequest struct {
	Kind       string         `json:"kind" binding:"required"`
	Config     map[string]any `json:"config" binding:"required"`
	OrderIndex int            `json:"order_index"`
	Metadata   map[string]any `json:"metadata"`
}

func (h *Handler) CreateActivity(c *gin.Context) {
	var input createActivityRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	activity, err := h.Service.CreateActivity(c.Request.Context(), orchestrator.CreateRequest{
		SessionID:  c.Param("sessionId"),
		Kind:       input.Kind,
		Config:     input.Config,
		OrderIndex: input.OrderIndex,
		Metadata:   input.Metadata,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, activity)
}

func (h *Handler) GetActivity(c *gin.Context) {
	activity, err := h.Service.GetActivity(c.Request.Context(), c.Param("activityId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

type listQuery struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

func (h *Handler) ListActivities(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 100
	}

	activities, err := h.Service.ListActivities(c.Request.Context(), c.Param("sessionId"), query.Offset, query.Limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"count":      len(activities),
	})
}

type updateActivityRequest struct {
	Config     map[string]any `json:"config"`
	OrderIndex *int           `json:"order_index"`
	Metadata   map[string]any `json:"metadata"`
}

func (h *Handler) UpdateActivity(c *gin.Context) {
	var input updateActivityRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	activity, err := h.Service.UpdateActivity(c.Request.Context(), c.Param("activityId"), orchestrator.UpdateRequest{
		Config:     input.Config,
		OrderIndex: input.OrderIndex,
		Metadata:   input.Metadata,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

func (h *Handler) DeleteActivity(c *gin.Context) {
	if err := h.Service.DeleteActivity(c.Request.Context(), c.Param("activityId")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type transitionRequest struct {
	TargetState string `json:"target_state" binding:"required"`
	Reason      string `json:"reason"`
	Force       bool   `json:"force"`
}

func (h *Handler) TransitionActivity(c *gin.Context) {
	var input transitionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	activity, err := h.Service.TransitionActivity(
		c.Request.Context(),
		c.Param("activityId"),
		domain.ActivityState(input.TargetState),
		input.Reason,
		input.Force,
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

func (h *Handler) ValidateTransition(c *gin.Context) {
	target := domain.ActivityState(c.Query("target_state"))
	if !target.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "target_state must be one of draft, published, active, expired"}})
		return
	}

	check, err := h.Service.ValidateTransition(c.Request.Context(), c.Param("activityId"), target)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

type submitResponseRequest struct {
	ParticipantID string         `json:"participant_id" binding:"required"`
	Payload       map[string]any `json:"payload" binding:"required"`
}

func (h *Handler) SubmitResponse(c *gin.Context) {
	var input submitResponseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	response, err := h.Service.SubmitResponse(c.Request.Context(), c.Param("activityId"), input.ParticipantID, input.Payload)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *Handler) GetResults(c *gin.Context) {
	results, err := h.Service.ActivityResults(c.Request.Context(), c.Param("activityId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) GetResponseSummary(c *gin.Context) {
	summary, err := h.Service.ResponseSummary(c.Request.Context(), c.Param("activityId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListActivityTypes is the discovery endpoint for registered kinds.
func (h *Handler) ListActivityTypes(c *gin.Context) {
	types := h.Registry.List()
	c.JSON(http.StatusOK, gin.H{
		"activity_types": types,
		"count":          len(types),
	})
}

func (h *Handler) GetActivityTypeSchema(c *gin.Context) {
	kindID := c.Param("kind")

	metadata, err := h.Registry.Metadata(kindID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	schema, err := h.Registry.Schema(kindID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          metadata.ID,
		"name":        metadata.Name,
		"description": metadata.Description,
		"version":     metadata.Version,
		"schema":      schema,
	})
}

// GetStateMachine describes the lifecycle table for clients that render
// transition controls.
func (h *Handler) GetStateMachine(c *gin.Context) {
	c.JSON(http.StatusOK, lifecycle.Info())
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
