package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/projhub/backend/internal/models"
	"github.com/projhub/backend/internal/storage"
	"gorm.io/gorm"
)

type docFixture struct {
	db        *gorm.DB
	blobs     *storage.MemoryStore
	documents *DocumentService
	projects  *ProjectService
	owner     *models.User
	project   *models.Project
}

func newDocFixture(t *testing.T) *docFixture {
	t.Helper()

	db := setupTestDB(t)
	blobs := storage.NewMemoryStore()
	f := &docFixture{
		db:        db,
		blobs:     blobs,
		documents: NewDocumentService(db, blobs),
		projects:  NewProjectService(db, blobs),
	}

	f.owner = createTestUser(t, db, "alice")
	project, err := f.projects.Create(&CreateProjectRequest{Name: "Notes"}, f.owner.ID)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	f.project = project
	return f
}

func (f *docFixture) upload(t *testing.T, name, content string) *models.Document {
	t.Helper()

	doc, err := f.documents.Upload(context.Background(), f.project.ID, name,
		strings.NewReader(content), int64(len(content)), "text/plain")
	if err != nil {
		t.Fatalf("Upload(%s) error = %v", name, err)
	}
	return doc
}

func TestDocumentUpload(t *testing.T) {
	f := newDocFixture(t)

	doc := f.upload(t, "f.txt", "hello")

	if doc.ID == 0 {
		t.Error("document should have an ID")
	}
	if doc.Name != "f.txt" {
		t.Errorf("Name = %q, expected f.txt", doc.Name)
	}
	if doc.BlobKey == "" {
		t.Error("document should have a blob key")
	}

	var link models.ProjectDocument
	if err := f.db.Where("document_id = ?", doc.ID).First(&link).Error; err != nil {
		t.Fatalf("link row missing: %v", err)
	}
	if link.ProjectID != f.project.ID {
		t.Errorf("link ProjectID = %d, expected %d", link.ProjectID, f.project.ID)
	}
	if f.blobs.Len() != 1 {
		t.Errorf("expected 1 stored blob, got %d", f.blobs.Len())
	}
}

func TestDocumentUpload_UniqueBlobKeys(t *testing.T) {
	f := newDocFixture(t)

	doc1 := f.upload(t, "f.txt", "one")
	doc2 := f.upload(t, "f.txt", "two")

	if doc1.BlobKey == doc2.BlobKey {
		t.Error("uploads of the same filename should get distinct blob keys")
	}
}

func TestDocumentList(t *testing.T) {
	f := newDocFixture(t)

	f.upload(t, "a.txt", "a")
	f.upload(t, "b.txt", "b")

	docs, err := f.documents.List(f.project.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Name != "a.txt" || docs[1].Name != "b.txt" {
		t.Errorf("documents out of order: %s, %s", docs[0].Name, docs[1].Name)
	}
}

func TestDocumentDownload(t *testing.T) {
	f := newDocFixture(t)

	doc := f.upload(t, "f.txt", "file content")

	result, err := f.documents.Download(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	defer result.Object.Reader.Close()

	data, _ := io.ReadAll(result.Object.Reader)
	if string(data) != "file content" {
		t.Errorf("content = %q, expected %q", data, "file content")
	}
	if result.Document.Name != "f.txt" {
		t.Errorf("Name = %q, expected f.txt", result.Document.Name)
	}
}

func TestDocumentDownload_Missing(t *testing.T) {
	f := newDocFixture(t)

	_, err := f.documents.Download(context.Background(), 9999)
	assertHTTPStatus(t, err, 404)
}

func TestDocumentProjectFor(t *testing.T) {
	f := newDocFixture(t)

	doc := f.upload(t, "f.txt", "x")

	projectID, err := f.documents.ProjectFor(doc.ID)
	if err != nil {
		t.Fatalf("ProjectFor() error = %v", err)
	}
	if projectID != f.project.ID {
		t.Errorf("projectID = %d, expected %d", projectID, f.project.ID)
	}

	_, err = f.documents.ProjectFor(9999)
	assertHTTPStatus(t, err, 404)
}

func TestDocumentDelete(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()

	doc := f.upload(t, "f.txt", "x")

	if err := f.documents.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var count int64
	f.db.Model(&models.Document{}).Where("id = ?", doc.ID).Count(&count)
	if count != 0 {
		t.Error("document row should be gone")
	}
	f.db.Model(&models.ProjectDocument{}).Where("document_id = ?", doc.ID).Count(&count)
	if count != 0 {
		t.Error("link row should be gone")
	}
	if f.blobs.Len() != 0 {
		t.Error("blob should be gone")
	}

	err := f.documents.Delete(ctx, doc.ID)
	assertHTTPStatus(t, err, 404)
}

func TestDocumentReplace(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()

	doc := f.upload(t, "old.txt", "old content")

	replaced, err := f.documents.Replace(ctx, doc.ID, "new.txt",
		strings.NewReader("new content"), 11, "text/plain")
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if replaced.ID == doc.ID {
		t.Error("replacement should create a fresh document row")
	}
	if replaced.Name != "new.txt" {
		t.Errorf("Name = %q, expected new.txt", replaced.Name)
	}

	projectID, err := f.documents.ProjectFor(replaced.ID)
	if err != nil {
		t.Fatalf("ProjectFor() error = %v", err)
	}
	if projectID != f.project.ID {
		t.Error("replacement should stay in the same project")
	}

	if _, err := f.documents.Get(doc.ID); err == nil {
		t.Error("old document row should be gone")
	}
	if f.blobs.Len() != 1 {
		t.Errorf("expected exactly the new blob, got %d", f.blobs.Len())
	}

	result, _ := f.documents.Download(ctx, replaced.ID)
	data, _ := io.ReadAll(result.Object.Reader)
	result.Object.Reader.Close()
	if string(data) != "new content" {
		t.Errorf("content = %q, expected %q", data, "new content")
	}
}
