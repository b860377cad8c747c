package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studybuddy-backend/internal/middleware"
	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/services"
)

type fakeFileStore struct {
	files   map[uuid.UUID]*models.File
	deleted []uuid.UUID
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[uuid.UUID]*models.File)}
}

func (f *fakeFileStore) Create(_ context.Context, file *models.File) error {
	file.ID = uuid.New()
	f.files[file.ID] = file
	return nil
}

func (f *fakeFileStore) GetByID(_ context.Context, id uuid.UUID) (*models.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return file, nil
}

func (f *fakeFileStore) GetByName(_ context.Context, userID uuid.UUID, filename string) (*models.File, error) {
	for _, file := range f.files {
		if file.UserID == userID && file.Filename == filename {
			return file, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeFileStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.File, error) {
	files := make([]models.File, 0)
	for _, file := range f.files {
		if file.UserID == userID {
			files = append(files, *file)
		}
	}
	return files, nil
}

func (f *fakeFileStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.files, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeEmbeddingStore struct{}

func (fakeEmbeddingStore) DeleteByFile(context.Context, uuid.UUID) error { return nil }

func newFileTestHandler(t *testing.T, store *fakeFileStore) (*FileHandler, *services.LocalStorage) {
	t.Helper()
	storage, err := services.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return NewFileHandler(store, fakeEmbeddingStore{}, services.NewExtractService(), storage, nil, 1), storage
}

func seedStoredFile(t *testing.T, store *fakeFileStore, storage *services.LocalStorage, userID uuid.UUID, contents string) *models.File {
	t.Helper()
	file := &models.File{
		UserID:      userID,
		Filename:    "lecture-notes.txt",
		Extension:   ".txt",
		ContentType: "text/plain",
	}
	if err := store.Create(context.Background(), file); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.SaveUpload(file.ID.String(), file.Extension, strings.NewReader(contents)); err != nil {
		t.Fatal(err)
	}
	return file
}

func fileRequest(t *testing.T, fileID string, userID uuid.UUID) *http.Request {
	t.Helper()
	req := authedRequest(t, http.MethodGet, "/api/v1/files/"+fileID+"/download", nil, userID)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", fileID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestFileDownloadOriginal(t *testing.T) {
	store := newFakeFileStore()
	h, storage := newFileTestHandler(t, store)
	userID := uuid.New()
	file := seedStoredFile(t, store, storage, userID, "original upload bytes")

	rec := httptest.NewRecorder()
	h.DownloadOriginal(rec, fileRequest(t, file.ID.String(), userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "original upload bytes" {
		t.Errorf("body differs from stored upload: %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, file.Filename) {
		t.Errorf("content disposition lacks original filename: %q", cd)
	}
}

func TestFileDownloadOriginal_OtherUsersFileIsNotFound(t *testing.T) {
	store := newFakeFileStore()
	h, storage := newFileTestHandler(t, store)
	file := seedStoredFile(t, store, storage, uuid.New(), "secret")

	rec := httptest.NewRecorder()
	h.DownloadOriginal(rec, fileRequest(t, file.ID.String(), uuid.New()))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestFileDownloadOriginal_MissingUpload(t *testing.T) {
	store := newFakeFileStore()
	h, _ := newFileTestHandler(t, store)
	userID := uuid.New()

	// Row exists but nothing was ever stored on disk.
	file := &models.File{UserID: userID, Filename: "ghost.txt", Extension: ".txt"}
	if err := store.Create(context.Background(), file); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.DownloadOriginal(rec, fileRequest(t, file.ID.String(), userID))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func multipartUpload(t *testing.T, filename, contents string, userID uuid.UUID) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func TestFileUpload_ExtractionFailureCleansUp(t *testing.T) {
	store := newFakeFileStore()
	h, storage := newFileTestHandler(t, store)
	userID := uuid.New()

	// Whitespace-only text has nothing to extract.
	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "blank.txt", "   \n  ", userID))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.files) != 0 {
		t.Error("file row should be removed after a failed ingest")
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected 1 deletion, got %d", len(store.deleted))
	}
	if _, err := storage.OpenUpload(store.deleted[0].String(), ".txt"); err == nil {
		t.Error("stored upload should be removed after a failed ingest")
	}
}

func TestFileUpload_UnsupportedExtension(t *testing.T) {
	store := newFakeFileStore()
	h, _ := newFileTestHandler(t, store)

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "video.mp4", "not a document", uuid.New()))

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
	if len(store.files) != 0 {
		t.Error("no row should be created for an unsupported upload")
	}
}
