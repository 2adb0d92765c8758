package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/db"
	"github.com/speeddate-dev/speeddate/internal/authz"
	"github.com/speeddate-dev/speeddate/internal/events"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/services"
	"github.com/speeddate-dev/speeddate/internal/types"
	"github.com/speeddate-dev/speeddate/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateEventRequest struct {
	Name                 string     `json:"name" validate:"required"`
	StartDateTime        *time.Time `json:"startDateTime"`
	EndDateTime          *time.Time `json:"endDateTime"`
	Location             string     `json:"location"`
	Description          string     `json:"description"`
	MaximumParticipants  *int       `json:"maximumParticipants" validate:"omitempty,min=1"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
}

// UpdateEventRequest covers the descriptive fields. Activity and rounds
// only change through the lifecycle endpoints. Omitted fields are left as
// they are; the clear flags remove the capacity or the deadline.
type UpdateEventRequest struct {
	Name                      *string    `json:"name" validate:"omitempty,min=1"`
	StartDateTime             *time.Time `json:"startDateTime"`
	EndDateTime               *time.Time `json:"endDateTime"`
	Location                  *string    `json:"location"`
	Description               *string    `json:"description"`
	MaximumParticipants       *int       `json:"maximumParticipants" validate:"omitempty,min=1"`
	RegistrationDeadline      *time.Time `json:"registrationDeadline"`
	ClearMaximumParticipants  bool       `json:"clearMaximumParticipants" validate:"excluded_with=MaximumParticipants"`
	ClearRegistrationDeadline bool       `json:"clearRegistrationDeadline" validate:"excluded_with=RegistrationDeadline"`
}

type RegistrationRequest struct {
	UserID uint `json:"userId"`
}

// lifecycleMessages maps rule violations to response messages. All of them
// are client errors.
var lifecycleMessages = []struct {
	err     error
	message string
}{
	{events.ErrAlreadyActive, types.MsgEventAlreadyActive},
	{events.ErrNotActive, types.MsgEventNotActive},
	{events.ErrNextRoundNotActive, types.MsgMustBeActiveForStart},
	{events.ErrRoundStillActive, types.MsgRoundActive},
	{events.ErrMaxRounds, types.MsgMaxRounds},
	{events.ErrEndRoundNotActive, types.MsgMustBeActiveForEnd},
	{events.ErrNoActiveRound, types.MsgNoActiveRound},
	{events.ErrUserIDRequired, types.MsgUserIDRequired},
	{events.ErrDeadlinePassed, types.MsgDeadlinePassed},
	{events.ErrEventFull, types.MsgMaxParticipants},
	{events.ErrAlreadyRegistered, types.MsgAlreadyRegistered},
	{events.ErrNotRegistered, types.MsgNotRegistered},
	{events.ErrCapacityTooLow, types.MsgCapacityTooLow},
}

func lifecycleError(err error) error {
	for _, m := range lifecycleMessages {
		if errors.Is(err, m.err) {
			return badRequest(m.message)
		}
	}
	return err
}

func eventResponse(e *models.Event) types.EventResponse {
	return types.EventResponse{
		ID:                   e.ID,
		Name:                 e.Name,
		Organizer:            e.OrganizerID,
		Participants:         e.ParticipantIDs(),
		StartDateTime:        e.StartDateTime,
		EndDateTime:          e.EndDateTime,
		Location:             e.Location,
		Description:          e.Description,
		MaximumParticipants:  e.MaximumParticipants,
		IsEventActive:        e.IsEventActive,
		RegistrationDeadline: e.RegistrationDeadline,
		NextRound: types.RoundState{
			RoundNumber:   e.NextRound.RoundNumber,
			IsRoundActive: e.NextRound.IsRoundActive,
			StartTime:     e.NextRound.StartTime,
			EndTime:       e.NextRound.EndTime,
		},
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func eventResponses(list []models.Event) []types.EventResponse {
	out := make([]types.EventResponse, 0, len(list))
	for i := range list {
		out = append(out, eventResponse(&list[i]))
	}
	return out
}

func orderedParticipants(q *gorm.DB) *gorm.DB {
	return q.Order("id")
}

func eventIDParam(ctx *gin.Context, name string) (uint, bool) {
	eventID, err := utils.GetIDParam(ctx, name)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgInvalidEventID})
		return 0, false
	}
	return eventID, true
}

// lockEvent loads the event and its participants, holding a row lock on
// the event until tx ends. Registration and lifecycle changes on the same
// event are serialized by this lock.
func lockEvent(tx *gorm.DB, eventID uint) (*models.Event, error) {
	q := tx
	// sqlite has no row locks; its single writer already serializes.
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var event models.Event
	if err := q.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(types.MsgEventNotFound)
		}
		return nil, err
	}

	if err := tx.Where("event_id = ?", eventID).Order("id").Find(&event.Participants).Error; err != nil {
		return nil, err
	}

	return &event, nil
}

func saveEventState(tx *gorm.DB, event *models.Event) error {
	return tx.Omit(clause.Associations).Save(event).Error
}

func deleteEventDependents(tx *gorm.DB, eventIDs ...uint) error {
	for _, model := range []any{&models.Review{}, &models.EventParticipant{}, &models.DateMatch{}} {
		if err := tx.Where("event_id IN ?", eventIDs).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) CreateEvent(ctx *gin.Context) {
	identity, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": types.MsgUnauthorized})
		return
	}

	if h.enforcer == nil || !h.enforcer.Allow(identity.Role, authz.ObjectEvents, authz.ActionCreate) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgOrganizerOnly})
		return
	}

	var req CreateEventRequest

	if !bindJSON(ctx, &req) {
		return
	}

	event := models.Event{
		Name:                 req.Name,
		OrganizerID:          identity.UserID,
		StartDateTime:        req.StartDateTime,
		EndDateTime:          req.EndDateTime,
		Location:             req.Location,
		Description:          req.Description,
		MaximumParticipants:  req.MaximumParticipants,
		RegistrationDeadline: req.RegistrationDeadline,
	}

	if err := db.DB.Create(&event).Error; err != nil {
		internalError(ctx, err, "Failed to create event")
		return
	}

	logging.Info().Uint("event_id", event.ID).Uint("organizer_id", identity.UserID).Msg("event created")
	ctx.JSON(http.StatusCreated, eventResponse(&event))
}

func (h *Handler) ListEvents(ctx *gin.Context) {
	var list []models.Event

	if err := db.DB.Preload("Participants", orderedParticipants).Order("id").Find(&list).Error; err != nil {
		internalError(ctx, err, "Failed to list events")
		return
	}

	ctx.JSON(http.StatusOK, eventResponses(list))
}

// ListEventsForUser returns events the user is registered for or organizes.
func (h *Handler) ListEventsForUser(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "userId")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgInvalidUserID})
		return
	}

	if !userExists(ctx, userID) {
		return
	}

	var list []models.Event

	registered := db.DB.Model(&models.EventParticipant{}).Select("event_id").Where("user_id = ?", userID)

	err = db.DB.Preload("Participants", orderedParticipants).
		Where("id IN (?) OR organizer_id = ?", registered, userID).
		Order("id").
		Find(&list).Error

	if err != nil {
		internalError(ctx, err, "Failed to list events for user")
		return
	}

	ctx.JSON(http.StatusOK, eventResponses(list))
}

func (h *Handler) GetEvent(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx, "id")
	if !ok {
		return
	}

	var event models.Event

	if err := db.DB.Preload("Participants", orderedParticipants).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": types.MsgEventNotFound})
			return
		}
		internalError(ctx, err, "Failed to fetch event")
		return
	}

	ctx.JSON(http.StatusOK, eventResponse(&event))
}

func (h *Handler) UpdateEvent(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx, "id")
	if !ok {
		return
	}

	var req UpdateEventRequest

	if !bindJSON(ctx, &req) {
		return
	}

	event, err := h.mutateEvent(eventID, func(tx *gorm.DB, e *models.Event) error {
		if req.Name != nil {
			e.Name = *req.Name
		}
		if req.StartDateTime != nil {
			e.StartDateTime = req.StartDateTime
		}
		if req.EndDateTime != nil {
			e.EndDateTime = req.EndDateTime
		}
		if req.Location != nil {
			e.Location = *req.Location
		}
		if req.Description != nil {
			e.Description = *req.Description
		}
		if req.MaximumParticipants != nil || req.ClearMaximumParticipants {
			if err := events.SetCapacity(e, req.MaximumParticipants); err != nil {
				return err
			}
		}
		if req.RegistrationDeadline != nil || req.ClearRegistrationDeadline {
			e.RegistrationDeadline = req.RegistrationDeadline
		}
		return nil
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to update event")
		return
	}

	h.publish(ctx, func(c context.Context) error { return h.notifier.EventUpdated(c, event.ID) })
	ctx.JSON(http.StatusOK, eventResponse(event))
}

func (h *Handler) DeleteEvent(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx, "id")
	if !ok {
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockEvent(tx, eventID); err != nil {
			return err
		}
		if err := deleteEventDependents(tx, eventID); err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, eventID).Error
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to delete event")
		return
	}

	h.publish(ctx, func(c context.Context) error { return h.notifier.EventUpdated(c, eventID) })
	ctx.JSON(http.StatusOK, gin.H{"message": types.MsgEventDeleted})
}

// mutateEvent runs fn against the locked event and persists the result in
// one transaction.
func (h *Handler) mutateEvent(eventID uint, fn func(tx *gorm.DB, e *models.Event) error) (*models.Event, error) {
	var event *models.Event

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if event, err = lockEvent(tx, eventID); err != nil {
			return err
		}

		if err := fn(tx, event); err != nil {
			return lifecycleError(err)
		}

		return saveEventState(tx, event)
	})

	return event, err
}

func (h *Handler) RegisterParticipant(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx, "eventId")
	if !ok {
		return
	}

	var req RegistrationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgUserIDRequired})
		return
	}

	if !userExists(ctx, req.UserID) {
		return
	}

	event, err := h.mutateEvent(eventID, func(tx *gorm.DB, e *models.Event) error {
		if err := events.Register(e, req.UserID, h.now()); err != nil {
			return err
		}

		participant := &e.Participants[len(e.Participants)-1]
		if err := tx.Create(participant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return events.ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to register participant")
		return
	}

	h.publish(ctx, func(c context.Context) error { return h.notifier.EventUpdated(c, event.ID) })
	ctx.JSON(http.StatusOK, eventResponse(event))
}

func (h *Handler) UnregisterParticipant(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx, "eventId")
	if !ok {
		return
	}

	var req RegistrationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgUserIDRequired})
		return
	}

	event, err := h.mutateEvent(eventID, func(tx *gorm.DB, e *models.Event) error {
		removed, err := events.Unregister(e, req.UserID)
		if err != nil {
			return err
		}
		return tx.Delete(&removed).Error
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to unregister participant")
		return
	}

	h.publish(ctx, func(c context.Context) error { return h.notifier.EventUpdated(c, event.ID) })
	ctx.JSON(http.StatusOK, eventResponse(event))
}

func (h *Handler) StartEvent(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx, "id")
	if !ok {
		return
	}

	event, err := h.mutateEvent(eventID, func(tx *gorm.DB, e *models.Event) error {
		if err := events.Start(e, h.now()); err != nil {
			return err
		}
		return services.NotifyEventStarted(tx, e)
	})

	if err != nil {
		respondTxError(ctx, err, "Failed to start event")
		return
	}

	logging.Info().Uint("event_id", event.ID).Msg("event started")

	message := fmt.Sprintf(types.MsgEventStarting, event.Name)
	h.publish(ctx, func(c context.Context) error { return h.notifier.EventStarting(c, event.ID, message) })
	h.publish(ctx, func(c context.Context) error { return h.notifier.EventUpdated(c, event.ID) })
	ctx.JSON(http.StatusOK, eventResponse(event))
}

func (h *Handler) EndEvent(ctx *gin.Context) {
	h.lifecycle(ctx, "Failed to end event", func(_ *gorm.DB, e *models.Event) error {
		return events.End(e)
	})
}

func (h *Handler) NextRound(ctx *gin.Context) {
	h.lifecycle(ctx, "Failed to start next round", func(tx *gorm.DB, e *models.Event) error {
		if err := events.NextRound(e, h.now()); err != nil {
			return err
		}
		return services.NotifyRoundStarted(tx, e)
	})
}

func (h *Handler) EndRound(ctx *gin.Context) {
	h.lifecycle(ctx, "Failed to end round", func(_ *gorm.DB, e *models.Event) error {
		return events.EndRound(e)
	})
}

func (h *Handler) lifecycle(ctx *gin.Context, what string, fn func(tx *gorm.DB, e *models.Event) error) {
	eventID, ok := eventIDParam(ctx, "id")
	if !ok {
		return
	}

	event, err := h.mutateEvent(eventID, fn)

	if err != nil {
		respondTxError(ctx, err, what)
		return
	}

	h.publish(ctx, func(c context.Context) error { return h.notifier.EventUpdated(c, event.ID) })
	ctx.JSON(http.StatusOK, eventResponse(event))
}
