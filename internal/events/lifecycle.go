// Package events holds the rules for running an event: starting and ending
// it, stepping through its rounds, and managing who is registered.
//
// Every function mutates the passed *models.Event in place and never touches
// the database, so callers decide how the change is persisted. On error the
// event is left exactly as it was.
package events

import (
	"errors"
	"slices"
	"time"

	"github.com/speeddate-dev/speeddate/internal/models"
)

const (
	MaxRounds     = 3
	RoundDuration = 15 * time.Minute
)

var (
	ErrAlreadyActive      = errors.New("event is already active")
	ErrNotActive          = errors.New("event is not active")
	ErrNextRoundNotActive = errors.New("event must be active to start a new round")
	ErrRoundStillActive   = errors.New("current round must be ended first")
	ErrMaxRounds          = errors.New("maximum number of rounds reached")
	ErrEndRoundNotActive  = errors.New("event must be active to end a round")
	ErrNoActiveRound      = errors.New("no active round to end")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrDeadlinePassed     = errors.New("registration deadline has passed")
	ErrEventFull          = errors.New("event has reached maximum participants")
	ErrAlreadyRegistered  = errors.New("user is already registered")
	ErrNotRegistered      = errors.New("user is not registered")
	ErrCapacityTooLow     = errors.New("capacity is below the registered participants")
)

// Start activates the event. The round counter is left at zero with the
// window for the first round pre-computed from the scheduled start, so the
// first NextRound call opens round 1. Until then the event reports round 0,
// which keeps round numbers within [0, MaxRounds].
func Start(e *models.Event, now time.Time) error {
	if e.IsEventActive {
		return ErrAlreadyActive
	}

	from := now
	if e.StartDateTime != nil {
		from = *e.StartDateTime
	}
	until := from.Add(RoundDuration)

	e.IsEventActive = true
	e.NextRound = models.EventRound{
		RoundNumber:   0,
		IsRoundActive: false,
		StartTime:     &from,
		EndTime:       &until,
	}
	return nil
}

// End deactivates the event and any running round. The round number is kept.
func End(e *models.Event) error {
	if !e.IsEventActive {
		return ErrNotActive
	}

	e.IsEventActive = false
	e.NextRound.IsRoundActive = false
	return nil
}

func NextRound(e *models.Event, now time.Time) error {
	switch {
	case !e.IsEventActive:
		return ErrNextRoundNotActive
	case e.NextRound.IsRoundActive:
		return ErrRoundStillActive
	case e.NextRound.RoundNumber >= MaxRounds:
		return ErrMaxRounds
	}

	until := now.Add(RoundDuration)

	e.NextRound.RoundNumber++
	e.NextRound.IsRoundActive = true
	e.NextRound.StartTime = &now
	e.NextRound.EndTime = &until
	return nil
}

func EndRound(e *models.Event) error {
	if !e.IsEventActive {
		return ErrEndRoundNotActive
	}
	if !e.NextRound.IsRoundActive {
		return ErrNoActiveRound
	}

	e.NextRound.IsRoundActive = false
	return nil
}

// CanRegister runs the registration checks without modifying the event.
// A nil MaximumParticipants means no cap.
func CanRegister(e *models.Event, userID uint, now time.Time) error {
	if userID == 0 {
		return ErrUserIDRequired
	}
	if e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline) {
		return ErrDeadlinePassed
	}
	if e.MaximumParticipants != nil && len(e.Participants) >= *e.MaximumParticipants {
		return ErrEventFull
	}
	if slices.Contains(e.ParticipantIDs(), userID) {
		return ErrAlreadyRegistered
	}
	return nil
}

// Register appends userID to the participants in registration order.
func Register(e *models.Event, userID uint, now time.Time) error {
	if err := CanRegister(e, userID, now); err != nil {
		return err
	}

	e.Participants = append(e.Participants, models.EventParticipant{EventID: e.ID, UserID: userID})
	return nil
}

// SetCapacity changes the participant limit. A nil limit removes it. The
// limit never drops below the participants already registered.
func SetCapacity(e *models.Event, limit *int) error {
	if limit != nil && *limit < len(e.Participants) {
		return ErrCapacityTooLow
	}

	e.MaximumParticipants = limit
	return nil
}

// Unregister removes userID and returns the removed participation row so
// the caller can delete it.
func Unregister(e *models.Event, userID uint) (models.EventParticipant, error) {
	if userID == 0 {
		return models.EventParticipant{}, ErrUserIDRequired
	}

	idx := slices.IndexFunc(e.Participants, func(p models.EventParticipant) bool {
		return p.UserID == userID
	})
	if idx < 0 {
		return models.EventParticipant{}, ErrNotRegistered
	}

	removed := e.Participants[idx]
	e.Participants = slices.Delete(e.Participants, idx, idx+1)
	return removed, nil
}
