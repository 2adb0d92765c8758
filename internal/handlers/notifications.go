package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/db"
	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/types"
	"github.com/speeddate-dev/speeddate/internal/utils"
	"gorm.io/gorm"
)

type CreateNotificationRequest struct {
	Message string `json:"message"`
}

func findNotification(ctx *gin.Context, userID uint) (models.Notification, bool) {
	var notification models.Notification

	notifID, err := utils.GetIDParam(ctx, "notifId")

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgNotificationNotFound})
		return notification, false
	}

	err = db.DB.Where("id = ? AND user_id = ?", notifID, userID).First(&notification).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgNotificationNotFound})
			return notification, false
		}
		internalError(ctx, err, "Failed to fetch notification")
		return notification, false
	}

	return notification, true
}

func (h *Handler) CreateNotification(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok {
		return
	}

	var req CreateNotificationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgNotificationMessageRequired})
		return
	}

	if !userExists(ctx, userID) {
		return
	}

	notification := models.Notification{UserID: userID, Message: req.Message}

	if err := db.DB.Create(&notification).Error; err != nil {
		internalError(ctx, err, "Failed to create notification")
		return
	}

	ctx.JSON(http.StatusCreated, notification)
}

func (h *Handler) ListNotifications(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok || !userExists(ctx, userID) {
		return
	}

	var notifications []models.Notification

	if err := db.DB.Where("user_id = ?", userID).Order("id").Find(&notifications).Error; err != nil {
		internalError(ctx, err, "Failed to list notifications")
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}

func (h *Handler) MarkNotificationRead(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok || !userExists(ctx, userID) {
		return
	}

	notification, ok := findNotification(ctx, userID)
	if !ok {
		return
	}

	if err := db.DB.Model(&notification).Update("is_read", true).Error; err != nil {
		internalError(ctx, err, "Failed to mark notification as read")
		return
	}

	ctx.JSON(http.StatusOK, notification)
}

func (h *Handler) DeleteNotification(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok || !userExists(ctx, userID) {
		return
	}

	notification, ok := findNotification(ctx, userID)
	if !ok {
		return
	}

	if err := db.DB.Delete(&notification).Error; err != nil {
		internalError(ctx, err, "Failed to delete notification")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": types.MsgNotificationDeleted})
}
