package models

const (
	ContactPending  = "pending"
	ContactAccepted = "accepted"
	ContactBlocked  = "blocked"
)

// SharedContact is another user this user has added. Status is this user's
// own view of the contact, set independently of the other side.
type SharedContact struct {
	BaseModel

	UserID    uint   `gorm:"not null;uniqueIndex:idx_user_contact" json:"-"`
	ContactID uint   `gorm:"not null;uniqueIndex:idx_user_contact" json:"contact"`
	Status    string `gorm:"not null;default:pending" json:"status"`
}
