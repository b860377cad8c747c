package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"studybuddy-backend/internal/i18n"
	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/quizgen"
)

const (
	defaultQuizQuestions  = 10
	defaultFlashcardCount = 10
	defaultLanguage       = "English"

	markdownCacheTTL  = 30 * time.Minute
	defaultLLMTimeout = 60 * time.Second
)

// LLM is the completion surface the study aid service depends on. Tests
// substitute a canned implementation.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// FileFinder resolves file IDs to their records.
type FileFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.File, error)
}

// StudyAidService generates quizzes and flashcards from a user's uploaded
// documents and persists the validated artifacts for later download.
type StudyAidService struct {
	llm        LLM
	storage    *LocalStorage
	fileRepo   FileFinder
	redis      *redis.Client
	llmTimeout time.Duration
}

func NewStudyAidService(llm LLM, storage *LocalStorage, fileRepo FileFinder, redisClient *redis.Client, llmTimeout time.Duration) *StudyAidService {
	if llmTimeout <= 0 {
		llmTimeout = defaultLLMTimeout
	}
	return &StudyAidService{
		llm:        llm,
		storage:    storage,
		fileRepo:   fileRepo,
		redis:      redisClient,
		llmTimeout: llmTimeout,
	}
}

// complete runs one LLM call under the configured deadline. An unresponsive
// model surfaces as an upstream failure instead of hanging the request.
func (s *StudyAidService) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &UpstreamError{Message: "Model did not respond within the time limit", Err: err}
		}
		return "", err
	}
	return raw, nil
}

// resolveFile checks that the file exists and belongs to the user. A file
// owned by someone else reads as not found.
func (s *StudyAidService) resolveFile(ctx context.Context, userID uuid.UUID, fileID string) (*models.File, error) {
	id, err := uuid.Parse(fileID)
	if err != nil {
		return nil, &NotFoundError{Message: "File not found"}
	}

	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "File not found"}
		}
		return nil, err
	}
	if file.UserID != userID {
		return nil, &NotFoundError{Message: "File not found"}
	}
	return file, nil
}

// loadMarkdown returns the markdown rendering of a file, consulting the
// Redis cache before disk.
func (s *StudyAidService) loadMarkdown(ctx context.Context, fileID uuid.UUID) (string, error) {
	cacheKey := "markdown:" + fileID.String()

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	content, err := s.storage.ReadMarkdown(fileID.String())
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", &UnprocessableError{Message: "File has no extractable content"}
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, content, markdownCacheTTL).Err(); err != nil {
			log.Printf("failed to cache markdown for %s: %v", fileID, err)
		}
	}
	return content, nil
}

// GenerateQuiz runs the full quiz pipeline: plan the distribution, prompt
// the model, validate the response, and persist the artifact. The persisted
// bytes are exactly what the download endpoint later serves.
func (s *StudyAidService) GenerateQuiz(ctx context.Context, userID uuid.UUID, req models.GenerateQuizRequest) (*quizgen.QuizResult, error) {
	file, err := s.resolveFile(ctx, userID, req.FileID)
	if err != nil {
		return nil, err
	}

	total := req.TotalQuestions
	if total == 0 {
		total = defaultQuizQuestions
	}
	language := req.Language
	if language == "" {
		language = defaultLanguage
	}

	plan, err := quizgen.BuildPlan(total, quizgen.CountRequest{
		SingleCorrect:   req.NumSingleCorrect,
		MultipleCorrect: req.NumMultipleCorrect,
		YesNo:           req.NumYesNo,
	})
	if err != nil {
		return nil, err
	}

	content, err := s.loadMarkdown(ctx, file.ID)
	if err != nil {
		return nil, err
	}

	marker := i18n.SelectAllMarker(language)
	prompt := quizgen.BuildQuizPrompt(total, plan, language, marker, content)

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload := quizgen.StripCodeFence(raw)
	result, err := quizgen.ValidateQuiz(payload, plan, total, i18n.MarkerCandidates(language))
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode quiz result: %w", err)
	}
	if err := s.storage.SaveQuizArtifact(file.ID.String(), data); err != nil {
		return nil, err
	}

	return result, nil
}

// GenerateFlashcards mirrors GenerateQuiz with the laxer flashcard
// contract. A failed artifact write is logged but does not fail the request,
// because the validated cards are already in hand.
func (s *StudyAidService) GenerateFlashcards(ctx context.Context, userID uuid.UUID, req models.GenerateFlashcardsRequest) ([]quizgen.Flashcard, error) {
	file, err := s.resolveFile(ctx, userID, req.FileID)
	if err != nil {
		return nil, err
	}

	total := req.TotalFlashcards
	if total <= 0 {
		total = defaultFlashcardCount
	}
	language := req.Language
	if language == "" {
		language = defaultLanguage
	}

	content, err := s.loadMarkdown(ctx, file.ID)
	if err != nil {
		return nil, err
	}

	prompt := quizgen.BuildFlashcardPrompt(total, language, content)

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cards, err := quizgen.ValidateFlashcards(quizgen.StripCodeFence(raw))
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(cards, "", "    ")
	if err == nil {
		if saveErr := s.storage.SaveFlashcardArtifact(file.ID.String(), language, data); saveErr != nil {
			log.Printf("failed to persist flashcards for %s: %v", file.ID, saveErr)
		}
	}

	return cards, nil
}

// QuizArtifact returns the persisted quiz bytes for download, unchanged.
func (s *StudyAidService) QuizArtifact(ctx context.Context, userID uuid.UUID, fileID string) ([]byte, error) {
	file, err := s.resolveFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	return s.storage.ReadQuizArtifact(file.ID.String())
}

// FlashcardArtifact returns the persisted flashcard bytes for download.
func (s *StudyAidService) FlashcardArtifact(ctx context.Context, userID uuid.UUID, fileID, language string) ([]byte, error) {
	file, err := s.resolveFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if language == "" {
		language = defaultLanguage
	}
	return s.storage.ReadFlashcardArtifact(file.ID.String(), language)
}
