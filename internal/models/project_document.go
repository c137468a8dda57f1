package models

import (
	"time"
)

// ProjectDocument links a document to the project it was uploaded into.
// The schema permits several links per document but only single-project
// attachment is exercised; deleting the link deletes the document.
type ProjectDocument struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  uint      `gorm:"uniqueIndex:idx_project_document;not null" json:"project_id"`
	Project    *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	DocumentID uint      `gorm:"uniqueIndex:idx_project_document;not null" json:"document_id"`
	Document   *Document `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ProjectDocument) TableName() string { return "project_documents" }
