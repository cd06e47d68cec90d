package model

import (
	"time"

	"github.com/google/uuid"
)

type RSVP struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EventID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rsvps_event_user" json:"eventId"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rsvps_event_user" json:"userId"`
	// Snapshot of the attendee's name at issuance time.
	UserName      string     `gorm:"type:varchar(128);not null" json:"userName"`
	Code          string     `gorm:"type:varchar(16);uniqueIndex;not null" json:"code"`
	Scanned       bool       `gorm:"not null;default:false" json:"scanned"`
	Timestamp     time.Time  `gorm:"not null" json:"timestamp"`
	ScanTimestamp *time.Time `json:"scanTimestamp,omitempty"`
	ScannedBy     *uuid.UUID `gorm:"type:uuid" json:"scannedBy,omitempty"`
}

func (RSVP) TableName() string { return "rsvps" }

// RSVPDetail is an RSVP joined with its owning event, as returned by code
// lookups.
type RSVPDetail struct {
	RSVP
	EventName   string    `json:"eventName"`
	CommunityID uuid.UUID `json:"communityId"`
}

// ScanResult is the outcome of the conditional scan transition. Transitioned
// is false when the code had already been redeemed; in that case RSVP carries
// the stamps from the first scan, untouched.
type ScanResult struct {
	RSVP         RSVP `json:"rsvp"`
	Transitioned bool `json:"transitioned"`
}
