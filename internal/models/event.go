package models

import "time"

// EventRound is the state of the current (or upcoming) round of an active event.
type EventRound struct {
	RoundNumber   int        `gorm:"not null;default:0" json:"roundNumber"`
	IsRoundActive bool       `gorm:"not null;default:false" json:"isRoundActive"`
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
}

type Event struct {
	BaseModel

	Name                 string     `gorm:"not null" json:"name"`
	OrganizerID          uint       `gorm:"not null;index" json:"organizer"`
	StartDateTime        *time.Time `json:"startDateTime"`
	EndDateTime          *time.Time `json:"endDateTime"`
	Location             string     `json:"location"`
	Description          string     `json:"description"`
	MaximumParticipants  *int       `json:"maximumParticipants"`
	IsEventActive        bool       `gorm:"not null;default:false" json:"isEventActive"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
	NextRound            EventRound `gorm:"embedded;embeddedPrefix:next_round_" json:"nextRound"`

	// Relationships
	Organizer    User               `gorm:"foreignKey:OrganizerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Participants []EventParticipant `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ParticipantIDs returns participant user ids in registration order.
func (e *Event) ParticipantIDs() []uint {
	ids := make([]uint, 0, len(e.Participants))
	for _, p := range e.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

type EventParticipant struct {
	BaseModel

	EventID uint `gorm:"not null;uniqueIndex:idx_event_participant" json:"-"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_event_participant;index" json:"userId"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
