package models

// DateMatch records who this user sat with in a given event round.
type DateMatch struct {
	BaseModel

	UserID        uint `gorm:"not null;index" json:"-"`
	EventID       uint `gorm:"not null;index" json:"event"`
	Round         int  `gorm:"not null" json:"round"`
	ParticipantID uint `gorm:"not null" json:"participant"`
}
