package models

type Review struct {
	BaseModel

	ReviewerID     uint   `gorm:"not null;index;uniqueIndex:idx_review_round" json:"reviewer"`
	ReviewedUserID uint   `gorm:"not null;index;uniqueIndex:idx_review_round" json:"reviewedUser"`
	EventID        uint   `gorm:"not null;index;uniqueIndex:idx_review_round" json:"event"`
	Round          int    `gorm:"not null;default:0;uniqueIndex:idx_review_round" json:"round"`
	Rating         int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment        string `gorm:"type:text" json:"comment"`
	ShowedUp       bool   `gorm:"not null;default:false" json:"showedUp"`
	SameTable      bool   `gorm:"not null;default:false" json:"sameTable"`
	SatNextTo      bool   `gorm:"not null;default:false" json:"satNextTo"`

	// Relationships
	Reviewer     User  `gorm:"foreignKey:ReviewerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReviewedUser User  `gorm:"foreignKey:ReviewedUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Event        Event `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
