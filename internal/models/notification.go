package models

type Notification struct {
	BaseModel

	UserID  uint   `gorm:"not null;index" json:"-"`
	Message string `gorm:"not null" json:"message"`
	IsRead  bool   `gorm:"not null;default:false" json:"isRead"`
}
