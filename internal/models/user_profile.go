package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	GenderMan   = "man"
	GenderWoman = "woman"
)

var AllowedGenders = []string{GenderMan, GenderWoman}

var AllowedInterests = []string{
	"coding",
	"hiking",
	"gaming",
	"cooking",
	"photography",
	"music",
	"reading",
	"travel",
	"sports",
}

type LookingFor struct {
	AgeRange         string `json:"ageRange"`
	RelationshipType string `json:"relationshipType"`
}

type UserProfile struct {
	BaseModel

	UserID          uint                        `gorm:"not null;uniqueIndex" json:"userId"`
	FullName        string                      `gorm:"not null" json:"fullName"`
	DateOfBirth     *time.Time                  `json:"dateOfBirth"`
	Gender          string                      `json:"gender"`
	PhoneNumber     string                      `json:"phoneNumber"`
	Occupation      string                      `json:"occupation"`
	AvatarURL       string                      `json:"avatarUrl"`
	Bio             string                      `json:"bio"`
	Interests       datatypes.JSONSlice[string] `json:"interests"`
	LookingFor      LookingFor                  `gorm:"embedded;embeddedPrefix:looking_for_" json:"lookingFor"`
	EventPreference string                      `json:"eventPreference"`
}
