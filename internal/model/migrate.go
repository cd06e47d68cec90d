package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models. Uniqueness of user
// email, community code, RSVP code and the (event, user) pair is enforced by
// the indexes declared on the model tags.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Community{},
		&CommunityMember{},
		&Event{},
		&RSVP{},
	)
}
