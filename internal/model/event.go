package model

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CommunityID uuid.UUID `gorm:"type:uuid;index;not null" json:"communityId"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Date        string    `gorm:"type:varchar(10);not null" json:"date"` // YYYY-MM-DD
	Time        string    `gorm:"type:varchar(5);not null" json:"time"`  // HH:MM
	Location    string    `gorm:"type:varchar(255)" json:"location"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Event) TableName() string { return "events" }
