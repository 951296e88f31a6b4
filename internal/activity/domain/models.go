// Package domain contains the append-only activity trail for documents.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Common activity actions recorded by the document pipeline.
const (
	ActionUploaded   = "UPLOADED"
	ActionAssigned   = "ASSIGNED"
	ActionReleased   = "RELEASED"
	ActionSubmitted  = "SUBMITTED"
	ActionQAReviewed = "QA_REVIEWED"
	ActionMerged     = "MERGED"
	ActionSplit      = "SPLIT"
	ActionExtracted  = "EXTRACTED"
	ActionDeleted    = "DELETED"
	ActionRestored   = "RESTORED"
	ActionPurged     = "PURGED"
)

// DocumentActivity is one audit entry. Rows are never updated or deleted.
type DocumentActivity struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	DocumentID snowflake.ID  `gorm:"not null;index" json:"document_id"`
	ActorID    *snowflake.ID `gorm:"index" json:"actor_id,omitempty"`
	Action     string        `gorm:"type:text;not null" json:"action"`
	Details    string        `gorm:"type:text" json:"details"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName sets the database table name.
func (DocumentActivity) TableName() string { return "document_activities" }
