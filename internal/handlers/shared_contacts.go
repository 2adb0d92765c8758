package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/db"
	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/types"
	"github.com/speeddate-dev/speeddate/internal/utils"
	"gorm.io/gorm"
)

type AddSharedContactRequest struct {
	ContactID uint `json:"contactId" validate:"required"`
}

type UpdateSharedContactRequest struct {
	Status string `json:"status" validate:"required,contactstatus"`
}

// SharedContactDetail is a shared contact with the other user inlined.
type SharedContactDetail struct {
	ID        uint        `json:"id"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	Contact   models.User `json:"contact"`
}

// contactTarget resolves the :contactId param to an existing user, writing
// the error response when it cannot.
func contactTarget(ctx *gin.Context) (uint, bool) {
	contactID, err := utils.GetIDParam(ctx, "contactId")

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgContactUserNotFound})
		return 0, false
	}

	var count int64

	if err := db.DB.Model(&models.User{}).Where("id = ?", contactID).Count(&count).Error; err != nil {
		internalError(ctx, err, "Failed to look up contact user")
		return 0, false
	}

	if count == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgContactUserNotFound})
		return 0, false
	}

	return contactID, true
}

func findSharedContact(ctx *gin.Context, userID, contactID uint) (models.SharedContact, bool) {
	var contact models.SharedContact

	err := db.DB.Where("user_id = ? AND contact_id = ?", userID, contactID).First(&contact).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgContactNotFound})
			return contact, false
		}
		internalError(ctx, err, "Failed to fetch shared contact")
		return contact, false
	}

	return contact, true
}

func (h *Handler) AddSharedContact(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok || !userExists(ctx, userID) {
		return
	}

	var req AddSharedContactRequest

	if !bindJSON(ctx, &req) {
		return
	}

	var count int64

	if err := db.DB.Model(&models.User{}).Where("id = ?", req.ContactID).Count(&count).Error; err != nil {
		internalError(ctx, err, "Failed to look up contact user")
		return
	}

	if count == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgContactUserNotFound})
		return
	}

	contact := models.SharedContact{
		UserID:    userID,
		ContactID: req.ContactID,
		Status:    models.ContactPending,
	}

	err := db.DB.Create(&contact).Error

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgContactExists})
		return
	}

	if err != nil {
		internalError(ctx, err, "Failed to add shared contact")
		return
	}

	ctx.JSON(http.StatusCreated, contact)
}

func (h *Handler) ListSharedContacts(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok || !userExists(ctx, userID) {
		return
	}

	var contacts []models.SharedContact

	if err := db.DB.Where("user_id = ?", userID).Order("id").Find(&contacts).Error; err != nil {
		internalError(ctx, err, "Failed to list shared contacts")
		return
	}

	ctx.JSON(http.StatusOK, contacts)
}

func (h *Handler) GetSharedContact(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok || !userExists(ctx, userID) {
		return
	}

	contactID, err := utils.GetIDParam(ctx, "contactId")

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgContactNotFound})
		return
	}

	contact, ok := findSharedContact(ctx, userID, contactID)
	if !ok {
		return
	}

	var other models.User

	if err := db.DB.First(&other, contact.ContactID).Error; err != nil {
		internalError(ctx, err, "Failed to fetch contact user")
		return
	}

	ctx.JSON(http.StatusOK, SharedContactDetail{
		ID:        contact.ID,
		Status:    contact.Status,
		CreatedAt: contact.CreatedAt,
		Contact:   other,
	})
}

// UpdateSharedContact sets this user's view of the contact. The other side
// is not consulted.
func (h *Handler) UpdateSharedContact(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok || !userExists(ctx, userID) {
		return
	}

	var req UpdateSharedContactRequest

	if !bindJSON(ctx, &req) {
		return
	}

	contactID, ok := contactTarget(ctx)
	if !ok {
		return
	}

	contact, ok := findSharedContact(ctx, userID, contactID)
	if !ok {
		return
	}

	if err := db.DB.Model(&contact).Update("status", req.Status).Error; err != nil {
		internalError(ctx, err, "Failed to update shared contact")
		return
	}

	ctx.JSON(http.StatusOK, contact)
}

func (h *Handler) DeleteSharedContact(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok || !userExists(ctx, userID) {
		return
	}

	contactID, ok := contactTarget(ctx)
	if !ok {
		return
	}

	contact, ok := findSharedContact(ctx, userID, contactID)
	if !ok {
		return
	}

	if err := db.DB.Delete(&contact).Error; err != nil {
		internalError(ctx, err, "Failed to delete shared contact")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": types.MsgContactDeleted})
}
