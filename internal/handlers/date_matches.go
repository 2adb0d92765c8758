package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/db"
	"github.com/speeddate-dev/speeddate/internal/events"
	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/types"
)

type CreateDateMatchRequest struct {
	EventID       uint `json:"event" validate:"required"`
	Round         int  `json:"round" validate:"min=0"`
	ParticipantID uint `json:"participant" validate:"required"`
}

// CreateDateMatch records who the user sat with in a round.
func (h *Handler) CreateDateMatch(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok || !userExists(ctx, userID) {
		return
	}

	var req CreateDateMatchRequest

	if !bindJSON(ctx, &req) {
		return
	}

	if req.Round > events.MaxRounds {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgMaxRounds})
		return
	}

	var count int64

	if err := db.DB.Model(&models.Event{}).Where("id = ?", req.EventID).Count(&count).Error; err != nil {
		internalError(ctx, err, "Failed to look up event")
		return
	}

	if count == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgEventNotFound})
		return
	}

	if !userExists(ctx, req.ParticipantID) {
		return
	}

	match := models.DateMatch{
		UserID:        userID,
		EventID:       req.EventID,
		Round:         req.Round,
		ParticipantID: req.ParticipantID,
	}

	if err := db.DB.Create(&match).Error; err != nil {
		internalError(ctx, err, "Failed to create date match")
		return
	}

	ctx.JSON(http.StatusCreated, match)
}

func (h *Handler) ListDateMatches(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok || !userExists(ctx, userID) {
		return
	}

	var matches []models.DateMatch

	if err := db.DB.Where("user_id = ?", userID).Order("id").Find(&matches).Error; err != nil {
		internalError(ctx, err, "Failed to list date matches")
		return
	}

	ctx.JSON(http.StatusOK, matches)
}
