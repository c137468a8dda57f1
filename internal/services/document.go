package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/projhub/backend/internal/models"
	"github.com/projhub/backend/internal/storage"
	"github.com/projhub/backend/pkg/logger"
	"github.com/projhub/backend/pkg/response"
	"gorm.io/gorm"
)

// DocumentService handles document rows, their project links and the
// underlying blobs. Access checks happen in the handlers through
// AccessService before any of these methods run, except where a document
// ID must first be resolved to its project.
type DocumentService struct {
	db    *gorm.DB
	blobs storage.BlobStore
}

func NewDocumentService(db *gorm.DB, blobs storage.BlobStore) *DocumentService {
	return &DocumentService{db: db, blobs: blobs}
}

// DownloadResult is a document ready to be streamed to the client.
type DownloadResult struct {
	Document *models.Document
	Object   *storage.Object
}

// List returns the documents attached to a project.
func (s *DocumentService) List(projectID uint) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.
		Joins("JOIN project_documents ON project_documents.document_id = documents.id").
		Where("project_documents.project_id = ?", projectID).
		Order("documents.id ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ProjectFor resolves the project a document is attached to. Documents are
// reachable only through their link row, so a missing link means the
// document does not exist for any caller.
func (s *DocumentService) ProjectFor(documentID uint) (uint, error) {
	var link models.ProjectDocument
	if err := s.db.Where("document_id = ?", documentID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, response.NewNotFound("document not found")
		}
		return 0, err
	}
	return link.ProjectID, nil
}

// Upload stores the content and creates the document row plus its project
// link in one transaction. The blob goes in first; if the transaction
// fails the blob is removed again, so at worst a crash orphans a blob.
func (s *DocumentService) Upload(ctx context.Context, projectID uint, name string, r io.Reader, size int64, contentType string) (*models.Document, error) {
	key := storage.NewBlobKey(name, time.Now())

	if err := s.blobs.Put(ctx, key, r, size, contentType); err != nil {
		return nil, response.NewServerError("failed to store document")
	}

	doc := models.Document{
		BlobKey: key,
		Name:    name,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		link := models.ProjectDocument{
			ProjectID:  projectID,
			DocumentID: doc.ID,
		}
		return tx.Create(&link).Error
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			logger.Error().Err(delErr).Str("blob_key", key).Msg("orphaned blob after failed upload")
		}
		return nil, err
	}

	return &doc, nil
}

// Get returns a document row by ID.
func (s *DocumentService) Get(documentID uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.First(&doc, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("document not found")
		}
		return nil, err
	}
	return &doc, nil
}

// Download fetches the document content from object storage.
func (s *DocumentService) Download(ctx context.Context, documentID uint) (*DownloadResult, error) {
	doc, err := s.Get(documentID)
	if err != nil {
		return nil, err
	}

	obj, err := s.blobs.Get(ctx, doc.BlobKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, response.NewNotFound("document content not found")
		}
		return nil, response.NewServerError("failed to fetch document")
	}

	return &DownloadResult{Document: doc, Object: obj}, nil
}

// Delete removes the link row and the document row in one transaction,
// then the blob. Blob deletion is idempotent, so a retry after a crash
// between the two steps succeeds.
func (s *DocumentService) Delete(ctx context.Context, documentID uint) error {
	doc, err := s.Get(documentID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&models.ProjectDocument{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, documentID).Error
	})
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, doc.BlobKey); err != nil {
		logger.Error().Err(err).Str("blob_key", doc.BlobKey).Msg("blob removal failed after document delete")
		return response.NewServerError("document deleted but its content could not be removed")
	}

	return nil
}

// Replace swaps the document content: delete the old document, then upload
// the new one into the same project. A failure between the two steps
// leaves the document absent; the operations are individually atomic.
func (s *DocumentService) Replace(ctx context.Context, documentID uint, name string, r io.Reader, size int64, contentType string) (*models.Document, error) {
	projectID, err := s.ProjectFor(documentID)
	if err != nil {
		return nil, err
	}

	if err := s.Delete(ctx, documentID); err != nil {
		return nil, err
	}

	return s.Upload(ctx, projectID, name, r, size, contentType)
}
