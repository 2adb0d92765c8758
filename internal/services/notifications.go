package services

import (
	"fmt"

	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/types"
	"gorm.io/gorm"
)

// NotifyEventStarted adds an in-app notification for every participant of
// event. Run it inside the transaction that starts the event so the
// notifications and the state change commit together.
func NotifyEventStarted(tx *gorm.DB, event *models.Event) error {
	return notifyParticipants(tx, event, fmt.Sprintf(types.MsgEventStarting, event.Name))
}

// NotifyRoundStarted tells participants the current round is open.
func NotifyRoundStarted(tx *gorm.DB, event *models.Event) error {
	return notifyParticipants(tx, event, fmt.Sprintf(types.MsgRoundStarting, event.NextRound.RoundNumber, event.Name))
}

func notifyParticipants(tx *gorm.DB, event *models.Event, message string) error {
	ids := event.ParticipantIDs()
	if len(ids) == 0 {
		return nil
	}

	notifications := make([]models.Notification, 0, len(ids))
	for _, userID := range ids {
		notifications = append(notifications, models.Notification{
			UserID:  userID,
			Message: message,
		})
	}

	if err := tx.Create(&notifications).Error; err != nil {
		return fmt.Errorf("notify participants of event %d: %w", event.ID, err)
	}
	return nil
}
