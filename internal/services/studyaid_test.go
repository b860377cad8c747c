package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studybuddy-backend/internal/models"
	"studybuddy-backend/internal/quizgen"
)

type fakeLLM struct {
	response    string
	err         error
	prompts     []string
	hadDeadline bool
	deadline    time.Time
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.deadline, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeFileFinder struct {
	files map[uuid.UUID]*models.File
}

func (f *fakeFileFinder) GetByID(_ context.Context, id uuid.UUID) (*models.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return file, nil
}

func newTestService(t *testing.T, llm *fakeLLM, userID uuid.UUID) (*StudyAidService, *models.File) {
	t.Helper()

	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	file := &models.File{
		ID:        uuid.New(),
		UserID:    userID,
		Filename:  "biology-notes.pdf",
		Extension: ".pdf",
	}
	if err := storage.WriteMarkdown(file.ID.String(), "The mitochondria is the powerhouse of the cell."); err != nil {
		t.Fatalf("failed to seed markdown: %v", err)
	}

	finder := &fakeFileFinder{files: map[uuid.UUID]*models.File{file.ID: file}}
	return NewStudyAidService(llm, storage, finder, nil, 30*time.Second), file
}

func validQuizResponse(t *testing.T, n int) string {
	t.Helper()
	questions := make([]map[string]any, 0, n)
	// The planner puts the remainder on single_correct first, so build a
	// 2/1/1-style split for n=4 and scale from there.
	plan, err := quizgen.BuildPlan(n, quizgen.CountRequest{})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	for i := 0; i < plan[quizgen.SingleCorrect]; i++ {
		questions = append(questions, map[string]any{
			"type":            "single_correct",
			"question":        "What produces energy?",
			"options":         []string{"Mitochondria", "Nucleus", "Ribosome", "Vacuole"},
			"correct_answers": []string{"Mitochondria"},
		})
	}
	for i := 0; i < plan[quizgen.MultipleCorrect]; i++ {
		questions = append(questions, map[string]any{
			"type":            "multiple_correct",
			"question":        "Which are organelles? (select all that apply)",
			"options":         []string{"Mitochondria", "Water", "Nucleus", "Salt"},
			"correct_answers": []string{"Mitochondria", "Nucleus"},
		})
	}
	for i := 0; i < plan[quizgen.YesNo]; i++ {
		questions = append(questions, map[string]any{
			"type":            "yes_no",
			"question":        "Do cells contain mitochondria?",
			"options":         []string{"Yes", "No"},
			"correct_answers": []string{"Yes"},
		})
	}
	data, err := json.Marshal(map[string]any{"questions": questions})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return string(data)
}

func TestGenerateQuiz_EndToEnd(t *testing.T) {
	userID := uuid.New()
	llm := &fakeLLM{response: "```json\n" + validQuizResponse(t, 4) + "\n```"}
	svc, file := newTestService(t, llm, userID)

	result, err := svc.GenerateQuiz(context.Background(), userID, models.GenerateQuizRequest{
		FileID:         file.ID.String(),
		TotalQuestions: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(result.Questions))
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("expected 1 LLM call, got %d", len(llm.prompts))
	}
}

func TestGenerateQuiz_ArtifactRoundTripsVerbatim(t *testing.T) {
	userID := uuid.New()
	llm := &fakeLLM{response: validQuizResponse(t, 3)}
	svc, file := newTestService(t, llm, userID)

	result, err := svc.GenerateQuiz(context.Background(), userID, models.GenerateQuizRequest{
		FileID:         file.ID.String(),
		TotalQuestions: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := svc.QuizArtifact(context.Background(), userID, file.ID.String())
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}

	expected, _ := json.MarshalIndent(result, "", "    ")
	if !bytes.Equal(stored, expected) {
		t.Error("persisted quiz bytes differ from the generated result")
	}
}

func TestGenerateQuiz_ValidationFailureIsSurfaced(t *testing.T) {
	userID := uuid.New()
	llm := &fakeLLM{response: `{"wrong_key": []}`}
	svc, file := newTestService(t, llm, userID)

	_, err := svc.GenerateQuiz(context.Background(), userID, models.GenerateQuizRequest{
		FileID:         file.ID.String(),
		TotalQuestions: 3,
	})
	kind, ok := quizgen.KindOf(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if kind != quizgen.KindInvalidStructure {
		t.Errorf("expected %s, got %s", quizgen.KindInvalidStructure, kind)
	}

	// A failed generation must not leave an artifact behind.
	if _, err := svc.QuizArtifact(context.Background(), userID, file.ID.String()); err == nil {
		t.Error("expected no artifact after failed generation")
	}
}

func TestGenerateQuiz_PlanningFailureSkipsLLM(t *testing.T) {
	userID := uuid.New()
	llm := &fakeLLM{response: "irrelevant"}
	svc, file := newTestService(t, llm, userID)

	six := 6
	_, err := svc.GenerateQuiz(context.Background(), userID, models.GenerateQuizRequest{
		FileID:           file.ID.String(),
		TotalQuestions:   5,
		NumSingleCorrect: &six,
	})
	if kind, _ := quizgen.KindOf(err); kind != quizgen.KindExceedsTotal {
		t.Fatalf("expected %s, got %v", quizgen.KindExceedsTotal, err)
	}
	if len(llm.prompts) != 0 {
		t.Error("LLM should not be called when planning fails")
	}
}

func TestGenerateQuiz_OtherUsersFileReadsAsNotFound(t *testing.T) {
	owner := uuid.New()
	llm := &fakeLLM{response: validQuizResponse(t, 3)}
	svc, file := newTestService(t, llm, owner)

	_, err := svc.GenerateQuiz(context.Background(), uuid.New(), models.GenerateQuizRequest{
		FileID:         file.ID.String(),
		TotalQuestions: 3,
	})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestGenerateQuiz_UpstreamFailure(t *testing.T) {
	userID := uuid.New()
	llm := &fakeLLM{err: &UpstreamError{Message: "Gemini API error"}}
	svc, file := newTestService(t, llm, userID)

	_, err := svc.GenerateQuiz(context.Background(), userID, models.GenerateQuizRequest{
		FileID:         file.ID.String(),
		TotalQuestions: 3,
	})
	var up *UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestGenerateQuiz_LLMCallCarriesDeadline(t *testing.T) {
	userID := uuid.New()
	llm := &fakeLLM{response: validQuizResponse(t, 3)}
	svc, file := newTestService(t, llm, userID)

	start := time.Now()
	_, err := svc.GenerateQuiz(context.Background(), userID, models.GenerateQuizRequest{
		FileID:         file.ID.String(),
		TotalQuestions: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !llm.hadDeadline {
		t.Fatal("LLM call context carries no deadline")
	}
	if remaining := llm.deadline.Sub(start); remaining > 31*time.Second {
		t.Errorf("deadline %v exceeds the configured timeout", remaining)
	}
}

func TestGenerateQuiz_TimeoutSurfacesAsUpstreamError(t *testing.T) {
	userID := uuid.New()
	llm := &fakeLLM{err: context.DeadlineExceeded}
	svc, file := newTestService(t, llm, userID)

	_, err := svc.GenerateQuiz(context.Background(), userID, models.GenerateQuizRequest{
		FileID:         file.ID.String(),
		TotalQuestions: 3,
	})
	var up *UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("timeout cause not preserved in the error chain")
	}
}

func TestGenerateFlashcards_EndToEnd(t *testing.T) {
	userID := uuid.New()
	llm := &fakeLLM{response: `[
		{"question": "What is the powerhouse of the cell?", "answer": "The mitochondria"},
		{"question": "Where is DNA stored?", "answer": "The nucleus"}
	]`}
	svc, file := newTestService(t, llm, userID)

	cards, err := svc.GenerateFlashcards(context.Background(), userID, models.GenerateFlashcardsRequest{
		FileID:          file.ID.String(),
		TotalFlashcards: 2,
		Language:        "English",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}

	stored, err := svc.FlashcardArtifact(context.Background(), userID, file.ID.String(), "English")
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	expected, _ := json.MarshalIndent(cards, "", "    ")
	if !bytes.Equal(stored, expected) {
		t.Error("persisted flashcard bytes differ from the generated cards")
	}
}

func TestGenerateFlashcards_LanguageScopedArtifacts(t *testing.T) {
	userID := uuid.New()
	llm := &fakeLLM{response: `[{"question": "Q", "answer": "A"}]`}
	svc, file := newTestService(t, llm, userID)

	_, err := svc.GenerateFlashcards(context.Background(), userID, models.GenerateFlashcardsRequest{
		FileID:   file.ID.String(),
		Language: "Spanish",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.FlashcardArtifact(context.Background(), userID, file.ID.String(), "Spanish"); err != nil {
		t.Errorf("expected Spanish artifact to exist: %v", err)
	}
	if _, err := svc.FlashcardArtifact(context.Background(), userID, file.ID.String(), "French"); err == nil {
		t.Error("expected no French artifact")
	}
}
