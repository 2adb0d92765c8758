package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/speeddate-dev/speeddate/db"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/types"
	"github.com/speeddate-dev/speeddate/internal/utils"
	"gorm.io/gorm"
)

// ImagesPath is where uploaded avatars are served from.
const ImagesPath = "/images"

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type CreateProfileRequest struct {
	UserID          uint               `json:"userId" validate:"required"`
	FullName        string             `json:"fullName" validate:"required"`
	DateOfBirth     *time.Time         `json:"dateOfBirth"`
	Gender          string             `json:"gender" validate:"omitempty,gender"`
	PhoneNumber     string             `json:"phoneNumber"`
	Occupation      string             `json:"occupation"`
	Bio             string             `json:"bio" validate:"max=2000"`
	Interests       []string           `json:"interests" validate:"omitempty,dive,interest"`
	LookingFor      *models.LookingFor `json:"lookingFor"`
	EventPreference string             `json:"eventPreference"`
}

type UpdateProfileRequest struct {
	FullName        *string            `json:"fullName" validate:"omitempty,min=1"`
	DateOfBirth     *time.Time         `json:"dateOfBirth"`
	Gender          *string            `json:"gender" validate:"omitempty,gender"`
	PhoneNumber     *string            `json:"phoneNumber"`
	Occupation      *string            `json:"occupation"`
	Bio             *string            `json:"bio" validate:"omitempty,max=2000"`
	Interests       []string           `json:"interests" validate:"omitempty,dive,interest"`
	LookingFor      *models.LookingFor `json:"lookingFor"`
	EventPreference *string            `json:"eventPreference"`
}

func profileUserParam(ctx *gin.Context) (uint, bool) {
	userID, err := utils.GetIDParam(ctx, "userId")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgInvalidUserID})
		return 0, false
	}
	return userID, true
}

func findProfile(ctx *gin.Context, userID uint) (models.UserProfile, bool) {
	var profile models.UserProfile

	if err := db.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgProfileNotFound})
			return profile, false
		}
		internalError(ctx, err, "Failed to fetch profile")
		return profile, false
	}

	return profile, true
}

// CreateProfile creates a profile for a user that has none and links it
// from the user, atomically.
func (h *Handler) CreateProfile(ctx *gin.Context) {
	var req CreateProfileRequest

	if !bindJSON(ctx, &req) {
		return
	}

	profile := models.UserProfile{
		UserID:          req.UserID,
		FullName:        req.FullName,
		DateOfBirth:     req.DateOfBirth,
		Gender:          req.Gender,
		PhoneNumber:     req.PhoneNumber,
		Occupation:      req.Occupation,
		Bio:             req.Bio,
		Interests:       req.Interests,
		EventPreference: req.EventPreference,
	}
	if req.LookingFor != nil {
		profile.LookingFor = *req.LookingFor
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(types.MsgUserNotFound)
			}
			return err
		}

		if user.ProfileID != nil {
			return badRequest(types.MsgProfileAlreadyExists)
		}

		if err := tx.Create(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return badRequest(types.MsgProfileAlreadyExists)
			}
			return err
		}

		return tx.Model(&user).Update("profile_id", profile.ID).Error
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to create profile")
		return
	}

	ctx.JSON(http.StatusCreated, profile)
}

func (h *Handler) ListProfiles(ctx *gin.Context) {
	var profiles []models.UserProfile

	if err := db.DB.Order("id").Find(&profiles).Error; err != nil {
		internalError(ctx, err, "Failed to list profiles")
		return
	}

	ctx.JSON(http.StatusOK, profiles)
}

func (h *Handler) GetProfile(ctx *gin.Context) {
	userID, ok := profileUserParam(ctx)
	if !ok {
		return
	}

	profile, ok := findProfile(ctx, userID)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(ctx *gin.Context) {
	userID, ok := profileUserParam(ctx)
	if !ok {
		return
	}

	var req UpdateProfileRequest

	if !bindJSON(ctx, &req) {
		return
	}

	profile, ok := findProfile(ctx, userID)
	if !ok {
		return
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.DateOfBirth != nil {
		profile.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.PhoneNumber != nil {
		profile.PhoneNumber = *req.PhoneNumber
	}
	if req.Occupation != nil {
		profile.Occupation = *req.Occupation
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Interests != nil {
		profile.Interests = req.Interests
	}
	if req.LookingFor != nil {
		profile.LookingFor = *req.LookingFor
	}
	if req.EventPreference != nil {
		profile.EventPreference = *req.EventPreference
	}

	if err := db.DB.Save(&profile).Error; err != nil {
		internalError(ctx, err, "Failed to update profile")
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

// DeleteProfile removes the profile and clears the owner's link to it.
func (h *Handler) DeleteProfile(ctx *gin.Context) {
	userID, ok := profileUserParam(ctx)
	if !ok {
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.UserProfile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(types.MsgProfileNotFound)
			}
			return err
		}

		if err := tx.Delete(&profile).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).Update("profile_id", nil).Error
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to delete profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": types.MsgProfileDeleted})
}

// UploadAvatar stores a multipart "avatar" image under the upload directory
// and points the profile at it.
func (h *Handler) UploadAvatar(ctx *gin.Context) {
	userID, ok := profileUserParam(ctx)
	if !ok {
		return
	}

	profile, ok := findProfile(ctx, userID)
	if !ok {
		return
	}

	header, err := ctx.FormFile("avatar")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgAvatarRequired})
		return
	}

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgAvatarTooLarge})
		return
	}

	file, err := header.Open()

	if err != nil {
		internalError(ctx, err, "Failed to open uploaded avatar")
		return
	}
	defer file.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)

	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		internalError(ctx, err, "Failed to read uploaded avatar")
		return
	}

	ext, ok := avatarExtensions[http.DetectContentType(sniff[:n])]

	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgAvatarType})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		internalError(ctx, err, "Failed to create upload directory")
		return
	}

	name := uuid.NewString() + ext

	if err := ctx.SaveUploadedFile(header, filepath.Join(h.uploadDir, name)); err != nil {
		internalError(ctx, err, "Failed to save avatar")
		return
	}

	previous := profile.AvatarURL
	profile.AvatarURL = fmt.Sprintf("%s/%s", ImagesPath, name)

	if err := db.DB.Model(&profile).Update("avatar_url", profile.AvatarURL).Error; err != nil {
		_ = os.Remove(filepath.Join(h.uploadDir, name))
		internalError(ctx, err, "Failed to update avatar")
		return
	}

	if previous != "" {
		old := filepath.Join(h.uploadDir, filepath.Base(previous))
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Warn().Err(err).Str("file", old).Msg("failed to remove previous avatar")
		}
	}

	ctx.JSON(http.StatusOK, profile)
}
