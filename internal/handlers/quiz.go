package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studybuddy-backend/internal/middleware"
	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/quizgen"
)

// StudyAidAPI is the slice of the study aid service the quiz and flashcard
// handlers use. Tests substitute a canned implementation.
type StudyAidAPI interface {
	GenerateQuiz(ctx context.Context, userID uuid.UUID, req models.GenerateQuizRequest) (*quizgen.QuizResult, error)
	GenerateFlashcards(ctx context.Context, userID uuid.UUID, req models.GenerateFlashcardsRequest) ([]quizgen.Flashcard, error)
	QuizArtifact(ctx context.Context, userID uuid.UUID, fileID string) ([]byte, error)
	FlashcardArtifact(ctx context.Context, userID uuid.UUID, fileID, language string) ([]byte, error)
}

type QuizHandler struct {
	studyAid StudyAidAPI
}

func NewQuizHandler(studyAid StudyAidAPI) *QuizHandler {
	return &QuizHandler{studyAid: studyAid}
}

func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.FileID == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"file_id": "File ID is required"}, r))
		return
	}
	if req.TotalQuestions < 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"total_questions": "Total questions must be positive"}, r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.studyAid.GenerateQuiz(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Download serves the persisted quiz artifact byte for byte.
func (h *QuizHandler) Download(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	userID := middleware.GetUserID(r.Context())

	data, err := h.studyAid.QuizArtifact(r.Context(), userID, fileID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="quiz_`+fileID+`.json"`)
	w.Write(data)
}
