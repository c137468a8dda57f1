package models

import (
	"time"
)

// Document is a stored file. The blob key addresses the content in object
// storage; the row itself is reachable only through a ProjectDocument link.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlobKey   string    `gorm:"uniqueIndex;size:128;not null" json:"-"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Document) TableName() string { return "documents" }
