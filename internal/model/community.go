package model

import (
	"time"

	"github.com/google/uuid"
)

type Community struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Code        string    `gorm:"type:varchar(16);uniqueIndex;not null" json:"code"`
	AdminID     uuid.UUID `gorm:"type:uuid;not null" json:"adminId"`
	CreatedAt   time.Time `json:"createdAt"`

	// Member ids; stored in the community_members join table, carried as a
	// plain array on the wire and in the local store.
	Members []uuid.UUID `gorm:"-" json:"members"`
}

func (Community) TableName() string { return "communities" }

// IsMember reports whether the given user belongs to the community.
func (c *Community) IsMember(userID uuid.UUID) bool {
	for _, id := range c.Members {
		if id == userID {
			return true
		}
	}
	return false
}

type CommunityMember struct {
	CommunityID uuid.UUID `gorm:"type:uuid;primaryKey" json:"communityId"`
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"userId"`
	JoinedAt    time.Time `json:"joinedAt"`
}

func (CommunityMember) TableName() string { return "community_members" }
