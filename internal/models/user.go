package models

const (
	RoleOrganizer   = "organizer"
	RoleParticipant = "participant"
)

var AllowedRoles = []string{RoleOrganizer, RoleParticipant}

type User struct {
	BaseModel

	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	Salt      string `gorm:"not null" json:"-"`
	Role      string `gorm:"not null;index" json:"role"`
	ProfileID *uint  `gorm:"index" json:"profile"`

	// Relationships
	SharedContacts []SharedContact `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"sharedContacts"`
	Notifications  []Notification  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"notifications"`
	DateMatches    []DateMatch     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"dateMatches"`
}
