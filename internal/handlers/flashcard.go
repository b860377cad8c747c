package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"studybuddy-backend/internal/middleware"
	"studybuddy-backend/internal/models"
)

type FlashcardHandler struct {
	studyAid StudyAidAPI
}

func NewFlashcardHandler(studyAid StudyAidAPI) *FlashcardHandler {
	return &FlashcardHandler{studyAid: studyAid}
}

func (h *FlashcardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateFlashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.FileID == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"file_id": "File ID is required"}, r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	cards, err := h.studyAid.GenerateFlashcards(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"flashcards": cards})
}

// Download serves the persisted flashcard artifact for the requested
// language byte for byte.
func (h *FlashcardHandler) Download(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	language := r.URL.Query().Get("language")
	userID := middleware.GetUserID(r.Context())

	data, err := h.studyAid.FlashcardArtifact(r.Context(), userID, fileID, language)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if language == "" {
		language = "English"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		`attachment; filename="flashcards_`+fileID+`_`+strings.ToLower(language)+`.json"`)
	w.Write(data)
}
