package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/db"
	"github.com/speeddate-dev/speeddate/internal/auth"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/types"
	"github.com/speeddate-dev/speeddate/internal/utils"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,role"`
	FullName string `json:"fullName"`
}

// UpdateUserRequest only carries fields a user may change through the
// generic update; credentials and role are set elsewhere.
type UpdateUserRequest struct {
	Email *string `json:"email" validate:"omitempty,email"`
}

func preloadUser(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("SharedContacts", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("Notifications", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("DateMatches", func(q *gorm.DB) *gorm.DB { return q.Order("id") })
}

func userIDParam(ctx *gin.Context) (uint, bool) {
	id, err := utils.GetIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgInvalidUserID})
		return 0, false
	}
	return id, true
}

// userExists reports whether the user row is present, writing 404 or 500
// when it is not.
func userExists(ctx *gin.Context, userID uint) bool {
	var count int64

	if err := db.DB.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		internalError(ctx, err, "Failed to look up user")
		return false
	}

	if count == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgUserNotFound})
		return false
	}

	return true
}

func (h *Handler) CreateUser(ctx *gin.Context) {
	var req CreateUserRequest

	if !bindJSON(ctx, &req) {
		return
	}

	salt, err := auth.NewSalt()

	if err != nil {
		internalError(ctx, err, "Failed to generate salt")
		return
	}

	user := models.User{
		Email:    normalizeEmail(req.Email),
		Salt:     salt,
		Password: auth.HashPassword(h.secret, salt, req.Password),
		Role:     req.Role,
	}
	profile := models.UserProfile{FullName: strings.TrimSpace(req.FullName)}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		err := createUserWithProfile(tx, &user, &profile)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return badRequest(types.MsgUserExists)
		}
		return err
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to create user")
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

func (h *Handler) ListUsers(ctx *gin.Context) {
	var users []models.User

	if err := preloadUser(db.DB).Order("id").Find(&users).Error; err != nil {
		internalError(ctx, err, "Failed to list users")
		return
	}

	ctx.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok {
		return
	}

	var user models.User

	if err := preloadUser(db.DB).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgUserNotFound})
			return
		}
		internalError(ctx, err, "Failed to fetch user")
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateUser(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok {
		return
	}

	h.updateUserWhere(ctx, "id = ?", userID, types.MsgUserNotFound)
}

func (h *Handler) UpdateUserByEmail(ctx *gin.Context) {
	h.updateUserWhere(ctx, "email = ?", normalizeEmail(ctx.Param("email")), types.MsgUserEmailNotFound)
}

func (h *Handler) updateUserWhere(ctx *gin.Context, query string, arg any, notFoundMsg string) {
	var req UpdateUserRequest

	if !bindJSON(ctx, &req) {
		return
	}

	var user models.User

	if err := db.DB.Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
			return
		}
		internalError(ctx, err, "Failed to fetch user")
		return
	}

	updates := make(map[string]interface{})

	if req.Email != nil {
		updates["email"] = normalizeEmail(*req.Email)
	}

	if len(updates) > 0 {
		err := db.DB.Model(&user).Updates(updates).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgUserExists})
			return
		}
		if err != nil {
			internalError(ctx, err, "Failed to update user")
			return
		}
	}

	if err := preloadUser(db.DB).First(&user, user.ID).Error; err != nil {
		internalError(ctx, err, "Failed to refresh user data")
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// DeleteUser removes the user and everything that references them in one
// transaction, then signs them out everywhere.
func (h *Handler) DeleteUser(ctx *gin.Context) {
	userID, ok := userIDParam(ctx)
	if !ok {
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(types.MsgUserNotFound)
			}
			return err
		}

		return deleteUserCascade(tx, user.ID)
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to delete user")
		return
	}

	if _, err := h.sessions.DestroyUser(ctx.Request.Context(), userID); err != nil {
		logging.Warn().Err(err).Uint("user_id", userID).Msg("failed to drop sessions of deleted user")
	}

	ctx.JSON(http.StatusOK, gin.H{"message": types.MsgUserDeleted})
}

func deleteUserCascade(tx *gorm.DB, userID uint) error {
	var organized []uint
	if err := tx.Model(&models.Event{}).Where("organizer_id = ?", userID).Pluck("id", &organized).Error; err != nil {
		return err
	}

	if len(organized) > 0 {
		if err := deleteEventDependents(tx, organized...); err != nil {
			return err
		}
		if err := tx.Where("id IN ?", organized).Delete(&models.Event{}).Error; err != nil {
			return err
		}
	}

	steps := []struct {
		model any
		query string
		refs  int
	}{
		{&models.Review{}, "reviewer_id = ? OR reviewed_user_id = ?", 2},
		{&models.UserProfile{}, "user_id = ?", 1},
		{&models.EventParticipant{}, "user_id = ?", 1},
		{&models.SharedContact{}, "user_id = ? OR contact_id = ?", 2},
		{&models.Notification{}, "user_id = ?", 1},
		{&models.DateMatch{}, "user_id = ? OR participant_id = ?", 2},
	}

	for _, step := range steps {
		args := make([]any, step.refs)
		for i := range args {
			args[i] = userID
		}
		if err := tx.Where(step.query, args...).Delete(step.model).Error; err != nil {
			return err
		}
	}

	return tx.Delete(&models.User{}, userID).Error
}
