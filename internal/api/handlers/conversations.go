package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/IGRA27/conversations-api-cloudant/internal/conversation"
	"github.com/IGRA27/conversations-api-cloudant/internal/models"
)

type StoreConversationRequest struct {
	UserID         string              `json:"user_id" binding:"required"`
	Messages       []models.Message    `json:"messages"`
	SessionHistory []conversation.Turn `json:"session_history"`
}

type StoreConversationResponse struct {
	ID string `json:"id"`
	OK bool   `json:"ok"`
}

// StoreConversation handles POST /conversations: the batch either extends the
// user's open session or starts a new record.
func (h *Handler) StoreConversation(c *gin.Context) {
	var req StoreConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Record(c.Request.Context(), req.UserID, req.Messages, req.SessionHistory, time.Now().UTC())
	if err != nil {
		var validationErr *conversation.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Reason})
			return
		}
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to store conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store conversation"})
		return
	}

	h.cache.Invalidate(c.Request.Context(), req.UserID)

	c.JSON(http.StatusCreated, StoreConversationResponse{ID: result.ID, OK: true})
}

// ListConversations handles GET /conversations with an optional user_id
// query filter. Omitting the filter returns every record.
func (h *Handler) ListConversations(c *gin.Context) {
	h.respondWithList(c, c.Query("user_id"))
}

// GetUserConversations handles GET /conversations/:user_id, the path-param
// variant of the list endpoint.
func (h *Handler) GetUserConversations(c *gin.Context) {
	h.respondWithList(c, c.Param("user_id"))
}

func (h *Handler) respondWithList(c *gin.Context, userID string) {
	ctx := c.Request.Context()

	if body, ok := h.cache.Get(ctx, userID); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	summaries, err := h.svc.List(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to fetch conversations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	body, err := json.Marshal(summaries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode conversations"})
		return
	}

	h.cache.Set(ctx, userID, body)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
