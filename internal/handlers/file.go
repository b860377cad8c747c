package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"studybuddy-backend/internal/middleware"
	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/services"
)

// IndexQueue is the Redis list the embedding worker consumes.
const IndexQueue = "queue:embedding-index"

// IndexJob is one unit of embedding work pushed onto the queue.
type IndexJob struct {
	FileID string `json:"file_id"`
}

// FileStore is the slice of the file repository the handler uses. Tests
// substitute a canned implementation.
type FileStore interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	GetByName(ctx context.Context, userID uuid.UUID, filename string) (*models.File, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EmbeddingStore is the slice of the embedding repository the handler uses.
type EmbeddingStore interface {
	DeleteByFile(ctx context.Context, fileID uuid.UUID) error
}

type FileHandler struct {
	fileRepo      FileStore
	embeddingRepo EmbeddingStore
	extract       *services.ExtractService
	storage       *services.LocalStorage
	redis         *redis.Client
	maxUploadMB   int64
}

func NewFileHandler(
	fileRepo FileStore,
	embeddingRepo EmbeddingStore,
	extract *services.ExtractService,
	storage *services.LocalStorage,
	redisClient *redis.Client,
	maxUploadMB int64,
) *FileHandler {
	return &FileHandler{
		fileRepo:      fileRepo,
		embeddingRepo: embeddingRepo,
		extract:       extract,
		storage:       storage,
		redis:         redisClient,
		maxUploadMB:   maxUploadMB,
	}
}

// Upload stores a document, extracts its text synchronously, and queues the
// embedding index job. The markdown rendering must exist before the handler
// returns so quiz generation can run immediately afterwards.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.maxUploadMB * 1024 * 1024
	if r.ContentLength > maxBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds the upload limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	upload, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer upload.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !h.extract.Supports(ext) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", "File type not supported", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	// Filenames are unique per user.
	if _, err := h.fileRepo.GetByName(r.Context(), userID, header.Filename); err == nil {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "A file with this name already exists", r))
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		handleServiceError(w, r, err)
		return
	}

	file := &models.File{
		UserID:      userID,
		Filename:    header.Filename,
		Extension:   ext,
		SizeBytes:   header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}
	if err := h.fileRepo.Create(r.Context(), file); err != nil {
		handleServiceError(w, r, err)
		return
	}

	// Until the upload is fully ingested, any exit (including a panic in an
	// extractor) removes the row and whatever reached disk.
	ingested := false
	defer func() {
		if ingested {
			return
		}
		h.storage.RemoveFileArtifacts(file.ID.String(), ext)
		h.fileRepo.Delete(r.Context(), file.ID)
	}()

	if _, err := h.storage.SaveUpload(file.ID.String(), ext, upload); err != nil {
		handleServiceError(w, r, err)
		return
	}

	text, err := h.extract.ExtractTextFromPath(h.storage.UploadPath(file.ID.String(), ext))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("UNPROCESSABLE", "Could not extract text from file", r))
		return
	}

	if err := h.storage.WriteMarkdown(file.ID.String(), text); err != nil {
		handleServiceError(w, r, err)
		return
	}
	ingested = true

	// Vectorizing happens in the background; failures there do not block
	// quiz or flashcard generation.
	jobBytes, _ := json.Marshal(IndexJob{FileID: file.ID.String()})
	if err := h.redis.LPush(r.Context(), IndexQueue, string(jobBytes)).Err(); err != nil {
		log.Printf("failed to enqueue index job for %s: %v", file.ID, err)
	}

	writeJSON(w, http.StatusCreated, file)
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	files, err := h.fileRepo.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	file, ok := h.ownedFile(w, r)
	if !ok {
		return
	}

	if err := h.embeddingRepo.DeleteByFile(r.Context(), file.ID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	if err := h.storage.RemoveFileArtifacts(file.ID.String(), file.Extension); err != nil {
		log.Printf("failed to remove artifacts for %s: %v", file.ID, err)
	}
	if err := h.fileRepo.Delete(r.Context(), file.ID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted"})
}

// DownloadOriginal streams the stored upload back under its original
// filename.
func (h *FileHandler) DownloadOriginal(w http.ResponseWriter, r *http.Request) {
	file, ok := h.ownedFile(w, r)
	if !ok {
		return
	}

	f, err := h.storage.OpenUpload(file.ID.String(), file.Extension)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	defer f.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("failed to stream upload %s: %v", file.ID, err)
	}
}

// DownloadMarkdown serves the extracted markdown rendering of the file.
func (h *FileHandler) DownloadMarkdown(w http.ResponseWriter, r *http.Request) {
	file, ok := h.ownedFile(w, r)
	if !ok {
		return
	}

	content, err := h.storage.ReadMarkdown(file.ID.String())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.ID.String()+`.md"`)
	w.Write([]byte(content))
}

// ownedFile resolves the {id} URL parameter to a file the requester owns.
// Someone else's file reads as not found.
func (h *FileHandler) ownedFile(w http.ResponseWriter, r *http.Request) (*models.File, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "File not found", r))
		return nil, false
	}

	file, err := h.fileRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "File not found", r))
		} else {
			handleServiceError(w, r, err)
		}
		return nil, false
	}

	if file.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "File not found", r))
		return nil, false
	}
	return file, true
}
