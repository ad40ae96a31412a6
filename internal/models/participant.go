package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant is an active named member of the chat room.
// A record exists only while the participant keeps signaling activity;
// the presence supervisor deletes it once it goes stale.
type Participant struct {
	// ID is the store identity of the record (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// Name is the display name, unique among active participants.
	Name string `gorm:"type:text;not null;uniqueIndex" json:"name"`
	// LastStatus is the unix time in milliseconds of the last join or heartbeat.
	LastStatus int64 `gorm:"not null;index" json:"lastStatus"`
}

// BeforeCreate is a GORM hook that assigns a new UUID when ID is not set.
func (p *Participant) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// IdleMillis returns how long the participant has been silent as of nowMillis.
func (p Participant) IdleMillis(nowMillis int64) int64 {
	return nowMillis - p.LastStatus
}
