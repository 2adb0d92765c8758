package types

import "time"

// UserResponse is what the auth endpoints return for the signed-in user.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ProfileID *uint     `json:"profile"`
	CreatedAt time.Time `json:"createdAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// EventResponse flattens participants to user ids, in registration order.
type EventResponse struct {
	ID                   uint       `json:"id"`
	Name                 string     `json:"name"`
	Organizer            uint       `json:"organizer"`
	Participants         []uint     `json:"participants"`
	StartDateTime        *time.Time `json:"startDateTime"`
	EndDateTime          *time.Time `json:"endDateTime"`
	Location             string     `json:"location"`
	Description          string     `json:"description"`
	MaximumParticipants  *int       `json:"maximumParticipants"`
	IsEventActive        bool       `json:"isEventActive"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
	NextRound            RoundState `json:"nextRound"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type RoundState struct {
	RoundNumber   int        `json:"roundNumber"`
	IsRoundActive bool       `json:"isRoundActive"`
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
}

// Frame is one realtime message in either direction.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}
