package quizgen

import (
	"encoding/json"
	"testing"
)

var testMarkers = []string{"select all that apply"}

func singleQ(question string, options []string, correct []string) map[string]any {
	return map[string]any{
		"type":            "single_correct",
		"question":        question,
		"options":         options,
		"correct_answers": correct,
	}
}

func quizPayload(t *testing.T, questions ...map[string]any) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{"questions": questions})
	if err != nil {
		t.Fatalf("failed to marshal test payload: %v", err)
	}
	return string(data)
}

func validSingle() map[string]any {
	return singleQ(
		"What is the powerhouse of the cell?",
		[]string{"Nucleus", "Mitochondria", "Ribosome", "Golgi apparatus"},
		[]string{"Mitochondria"},
	)
}

func validMultiple() map[string]any {
	return map[string]any{
		"type":            "multiple_correct",
		"question":        "Which of these are rocky planets? (select all that apply)",
		"options":         []string{"Mercury", "Jupiter", "Earth", "Neptune"},
		"correct_answers": []string{"Mercury", "Earth"},
	}
}

func validYesNo() map[string]any {
	return map[string]any{
		"type":            "yes_no",
		"question":        "Is the sun a star?",
		"options":         []string{"Yes", "No"},
		"correct_answers": []string{"Yes"},
	}
}

func expectKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	kind, ok := KindOf(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if kind != want {
		t.Fatalf("expected kind %s, got %s (%v)", want, kind, err)
	}
}

func TestValidateQuiz_Valid(t *testing.T) {
	plan := Plan{SingleCorrect: 1, MultipleCorrect: 1, YesNo: 1}
	payload := quizPayload(t, validSingle(), validMultiple(), validYesNo())

	result, err := ValidateQuiz(payload, plan, 3, testMarkers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(result.Questions))
	}
	if result.Questions[0].Type != SingleCorrect {
		t.Errorf("expected first question type single_correct, got %s", result.Questions[0].Type)
	}
	if result.Questions[1].CorrectAnswers[1] != "Earth" {
		t.Errorf("correct answers not preserved verbatim: %v", result.Questions[1].CorrectAnswers)
	}
}

func TestValidateQuiz_MalformedJSON(t *testing.T) {
	_, err := ValidateQuiz(`{"questions": [`, Plan{}, 1, testMarkers)
	expectKind(t, err, KindMalformedResponse)
}

func TestValidateQuiz_InvalidStructure(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"top-level array", `[{"type": "yes_no"}]`},
		{"missing questions key", `{"items": []}`},
		{"questions not an array", `{"questions": {"a": 1}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateQuiz(tc.payload, Plan{}, 1, testMarkers)
			expectKind(t, err, KindInvalidStructure)
		})
	}
}

func TestValidateQuiz_TotalCountMismatchIsFatal(t *testing.T) {
	plan := Plan{SingleCorrect: 2}
	payload := quizPayload(t, validSingle())

	_, err := ValidateQuiz(payload, plan, 2, testMarkers)
	expectKind(t, err, KindCountMismatch)
}

func TestValidateQuiz_PerTypeMismatchIsNotFatal(t *testing.T) {
	// Plan asked for one of each but the LLM returned two singles and a
	// yes/no. Total matches, so this only logs a warning.
	plan := Plan{SingleCorrect: 1, MultipleCorrect: 1, YesNo: 1}
	second := singleQ(
		"Which planet is closest to the sun?",
		[]string{"Venus", "Mercury", "Mars", "Earth"},
		[]string{"Mercury"},
	)
	payload := quizPayload(t, validSingle(), second, validYesNo())

	result, err := ValidateQuiz(payload, plan, 3, testMarkers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(result.Questions))
	}
}

func TestValidateQuiz_QuestionNotAnObject(t *testing.T) {
	_, err := ValidateQuiz(`{"questions": ["just a string"]}`, Plan{}, 1, testMarkers)
	expectKind(t, err, KindInvalidQuestionFormat)
}

func TestValidateQuiz_UnknownQuestionType(t *testing.T) {
	q := validSingle()
	q["type"] = "essay"
	_, err := ValidateQuiz(quizPayload(t, q), Plan{}, 1, testMarkers)
	expectKind(t, err, KindInvalidQuestionType)
}

func TestValidateQuiz_TypeTagIsNormalized(t *testing.T) {
	q := validSingle()
	q["type"] = "  Single_Correct  "
	result, err := ValidateQuiz(quizPayload(t, q), Plan{SingleCorrect: 1}, 1, testMarkers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Questions[0].Type != SingleCorrect {
		t.Fatalf("expected normalized type single_correct, got %q", result.Questions[0].Type)
	}
}

func TestValidateQuiz_InvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		options []any
	}{
		{"empty string option", []any{"A", "  ", "C", "D"}},
		{"non-string option", []any{"A", 2, "C", "D"}},
		{"options not a list", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := map[string]any{
				"type":            "single_correct",
				"question":        "Q?",
				"correct_answers": []any{"A"},
			}
			if tc.options != nil {
				q["options"] = tc.options
			} else {
				q["options"] = "not a list"
			}
			_, err := ValidateQuiz(quizPayload(t, q), Plan{}, 1, testMarkers)
			expectKind(t, err, KindInvalidOptions)
		})
	}
}

func TestValidateQuiz_DuplicateOptions(t *testing.T) {
	q := singleQ("Q?", []string{"A", "B", "A", "C"}, []string{"A"})
	_, err := ValidateQuiz(quizPayload(t, q), Plan{}, 1, testMarkers)
	expectKind(t, err, KindDuplicateOptions)
}

func TestValidateQuiz_CorrectAnswerNotInOptions(t *testing.T) {
	q := singleQ("Q?", []string{"A", "B", "C", "D"}, []string{"E"})
	_, err := ValidateQuiz(quizPayload(t, q), Plan{}, 1, testMarkers)
	expectKind(t, err, KindCorrectAnswerNotInOptions)
}

func TestValidateQuiz_SingleCorrectCardinality(t *testing.T) {
	// Three options fail regardless of the correct-answer count.
	threeOpts := singleQ("Q?", []string{"A", "B", "C"}, []string{"A"})
	_, err := ValidateQuiz(quizPayload(t, threeOpts), Plan{}, 1, testMarkers)
	expectKind(t, err, KindInvalidSingleCorrectFormat)

	twoCorrect := singleQ("Q?", []string{"A", "B", "C", "D"}, []string{"A", "B"})
	_, err = ValidateQuiz(quizPayload(t, twoCorrect), Plan{}, 1, testMarkers)
	expectKind(t, err, KindInvalidSingleCorrectFormat)
}

func TestValidateQuiz_MultipleCorrectCardinality(t *testing.T) {
	q := validMultiple()
	q["correct_answers"] = []string{"Mercury"}
	_, err := ValidateQuiz(quizPayload(t, q), Plan{}, 1, testMarkers)
	expectKind(t, err, KindInvalidMultipleCorrectFormat)
}

func TestValidateQuiz_MissingSelectAllMarker(t *testing.T) {
	q := validMultiple()
	q["question"] = "Which of these are rocky planets?"
	_, err := ValidateQuiz(quizPayload(t, q), Plan{}, 1, testMarkers)
	expectKind(t, err, KindMissingSelectAllMarker)
}

func TestValidateQuiz_LocalizedMarkerAccepted(t *testing.T) {
	q := validMultiple()
	q["question"] = "¿Cuáles son planetas rocosos? (Selecciona Todos Los Que Apliquen)"
	markers := []string{"selecciona todos los que apliquen", "select all that apply"}

	result, err := ValidateQuiz(quizPayload(t, q), Plan{MultipleCorrect: 1}, 1, markers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(result.Questions))
	}
}

func TestValidateQuiz_YesNoCardinality(t *testing.T) {
	q := validYesNo()
	q["options"] = []string{"Yes", "No", "Maybe"}
	q["correct_answers"] = []string{"Yes"}
	_, err := ValidateQuiz(quizPayload(t, q), Plan{}, 1, testMarkers)
	expectKind(t, err, KindInvalidYesNoFormat)

	q = validYesNo()
	q["correct_answers"] = []string{"Yes", "No"}
	_, err = ValidateQuiz(quizPayload(t, q), Plan{}, 1, testMarkers)
	expectKind(t, err, KindInvalidYesNoFormat)
}

func TestValidateQuiz_MissingCorrectAnswers(t *testing.T) {
	q := validSingle()
	delete(q, "correct_answers")
	_, err := ValidateQuiz(quizPayload(t, q), Plan{}, 1, testMarkers)
	expectKind(t, err, KindInvalidSingleCorrectFormat)
}

func TestValidateQuiz_EmptyQuestionsAllowedWhenTotalZero(t *testing.T) {
	// The insufficient-content response shape from the prompt contract.
	result, err := ValidateQuiz(`{"questions": []}`, Plan{}, 0, testMarkers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Questions) != 0 {
		t.Fatalf("expected no questions, got %d", len(result.Questions))
	}
}
