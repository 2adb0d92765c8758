package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/db"
	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/types"
	"github.com/speeddate-dev/speeddate/internal/utils"
	"gorm.io/gorm"
)

type CreateReviewRequest struct {
	Reviewer     uint   `json:"reviewer" validate:"required"`
	ReviewedUser uint   `json:"reviewedUser" validate:"required"`
	Event        uint   `json:"event" validate:"required"`
	Round        int    `json:"round" validate:"min=0"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment"`
	ShowedUp     bool   `json:"showedUp"`
	SameTable    bool   `json:"sameTable"`
	SatNextTo    bool   `json:"satNextTo"`
}

// UpdateReviewRequest only touches the assessment. Who reviewed whom at which
// event is fixed once created.
type UpdateReviewRequest struct {
	Rating    *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment   *string `json:"comment"`
	ShowedUp  *bool   `json:"showedUp"`
	SameTable *bool   `json:"sameTable"`
	SatNextTo *bool   `json:"satNextTo"`
}

func reviewIDParam(ctx *gin.Context) (uint, bool) {
	id, err := utils.GetIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgInvalidReview})
		return 0, false
	}
	return id, true
}

func findReview(ctx *gin.Context, id uint) (models.Review, bool) {
	var review models.Review

	if err := db.DB.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgReviewNotFound})
			return review, false
		}
		internalError(ctx, err, "Failed to fetch review")
		return review, false
	}

	return review, true
}

func (h *Handler) CreateReview(ctx *gin.Context) {
	var req CreateReviewRequest

	if !bindJSON(ctx, &req) {
		return
	}

	review := models.Review{
		ReviewerID:     req.Reviewer,
		ReviewedUserID: req.ReviewedUser,
		EventID:        req.Event,
		Round:          req.Round,
		Rating:         req.Rating,
		Comment:        req.Comment,
		ShowedUp:       req.ShowedUp,
		SameTable:      req.SameTable,
		SatNextTo:      req.SatNextTo,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&models.User{}).Where("id IN ?", []uint{req.Reviewer, req.ReviewedUser}).Count(&users).Error; err != nil {
			return err
		}

		want := int64(2)
		if req.Reviewer == req.ReviewedUser {
			want = 1
		}
		if users != want {
			return notFound(types.MsgUserNotFound)
		}

		var events int64
		if err := tx.Model(&models.Event{}).Where("id = ?", req.Event).Count(&events).Error; err != nil {
			return err
		}
		if events == 0 {
			return notFound(types.MsgEventNotFound)
		}

		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return badRequest(types.MsgReviewExists)
			}
			return err
		}
		return nil
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to create review")
		return
	}

	ctx.JSON(http.StatusCreated, review)
}

// ListReviews accepts optional reviewer, reviewedUser and event query filters.
func (h *Handler) ListReviews(ctx *gin.Context) {
	q := db.DB.Model(&models.Review{})

	for param, column := range map[string]string{
		"reviewer":     "reviewer_id",
		"reviewedUser": "reviewed_user_id",
		"event":        "event_id",
	} {
		raw, ok := ctx.GetQuery(param)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgInvalidRequest})
			return
		}
		q = q.Where(column+" = ?", uint(id))
	}

	var reviews []models.Review

	if err := q.Order("id").Find(&reviews).Error; err != nil {
		internalError(ctx, err, "Failed to list reviews")
		return
	}

	ctx.JSON(http.StatusOK, reviews)
}

func (h *Handler) GetReview(ctx *gin.Context) {
	id, ok := reviewIDParam(ctx)
	if !ok {
		return
	}

	review, ok := findReview(ctx, id)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, review)
}

func (h *Handler) UpdateReview(ctx *gin.Context) {
	id, ok := reviewIDParam(ctx)
	if !ok {
		return
	}

	var req UpdateReviewRequest

	if !bindJSON(ctx, &req) {
		return
	}

	review, ok := findReview(ctx, id)
	if !ok {
		return
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}
	if req.ShowedUp != nil {
		review.ShowedUp = *req.ShowedUp
	}
	if req.SameTable != nil {
		review.SameTable = *req.SameTable
	}
	if req.SatNextTo != nil {
		review.SatNextTo = *req.SatNextTo
	}

	if err := db.DB.Omit("Reviewer", "ReviewedUser", "Event").Save(&review).Error; err != nil {
		internalError(ctx, err, "Failed to update review")
		return
	}

	ctx.JSON(http.StatusOK, review)
}

func (h *Handler) DeleteReview(ctx *gin.Context) {
	id, ok := reviewIDParam(ctx)
	if !ok {
		return
	}

	result := db.DB.Delete(&models.Review{}, id)

	if result.Error != nil {
		internalError(ctx, result.Error, "Failed to delete review")
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgReviewNotFound})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": types.MsgReviewDeleted})
}
