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

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userResponse(user models.User) types.UserResponse {
	return types.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		ProfileID: user.ProfileID,
		CreatedAt: user.CreatedAt,
	}
}

// createUserWithProfile inserts the user, its profile, and the back-link
// from user to profile on tx.
func createUserWithProfile(tx *gorm.DB, user *models.User, profile *models.UserProfile) error {
	if err := tx.Create(user).Error; err != nil {
		return err
	}

	profile.UserID = user.ID
	if err := tx.Create(profile).Error; err != nil {
		return err
	}

	user.ProfileID = &profile.ID
	return tx.Model(user).Update("profile_id", profile.ID).Error
}

// Register creates a participant account together with its profile.
func (h *Handler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgMissingCredentials})
		return
	}

	req.Email = normalizeEmail(req.Email)

	if req.Email == "" || req.Password == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgMissingCredentials})
		return
	}

	salt, err := auth.NewSalt()

	if err != nil {
		internalError(ctx, err, "Failed to generate salt")
		return
	}

	user := models.User{
		Email:    req.Email,
		Salt:     salt,
		Password: auth.HashPassword(h.secret, salt, req.Password),
		Role:     models.RoleParticipant,
	}
	profile := models.UserProfile{FullName: strings.TrimSpace(req.FullName)}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return badRequest(types.MsgUserExists)
		}

		err := createUserWithProfile(tx, &user, &profile)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return badRequest(types.MsgUserExists)
		}
		return err
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to register user")
		return
	}

	logging.Info().Uint("user_id", user.ID).Msg("user registered")
	ctx.JSON(http.StatusCreated, gin.H{"message": types.MsgUserCreated})
}

func (h *Handler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgMissingCredentials})
		return
	}

	req.Email = normalizeEmail(req.Email)

	if req.Email == "" || req.Password == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgMissingCredentials})
		return
	}

	var user models.User

	err := db.DB.Where("email = ?", req.Email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgUserNotFound})
			return
		}
		internalError(ctx, err, "Database error when fetching user")
		return
	}

	if !auth.VerifyPassword(h.secret, user.Salt, req.Password, user.Password) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": types.MsgInvalidCredentials})
		return
	}

	if _, err := h.sessions.Start(ctx.Request.Context(), ctx.Writer, user.ID, user.Email, user.Role); err != nil {
		internalError(ctx, err, "Failed to start session")
		return
	}

	ctx.JSON(http.StatusOK, userResponse(user))
}

func (h *Handler) Logout(ctx *gin.Context) {
	if err := h.sessions.Destroy(ctx.Request.Context(), ctx.Writer, ctx.Request); err != nil {
		logging.Error().Err(err).Msg("Failed to destroy session")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.MsgLogoutFailed})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": types.MsgLogoutSuccessful})
}

// Me returns the signed-in user.
func (h *Handler) Me(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": types.MsgUnauthorized})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgUserNotFound})
			return
		}
		internalError(ctx, err, "Failed to fetch current user")
		return
	}

	ctx.JSON(http.StatusOK, userResponse(user))
}
