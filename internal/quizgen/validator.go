package quizgen

import (
	"encoding/json"
	"log"
	"strings"
)

// ValidateQuiz parses a normalized LLM response and enforces the full
// structural contract against the plan. Checks run in a fixed order and
// short-circuit on the first violation, each carrying a distinct ErrorKind.
//
// Two deliberately asymmetric policies:
//   - a total-count mismatch is fatal (downstream consumers assume exact
//     counts);
//   - a per-type count mismatch against the plan is logged but tolerated,
//     since the per-question rules below still apply to every entry.
//
// markers are the locale-appropriate "select all that apply" phrases a
// multiple_correct question text must contain (matched case-insensitively).
func ValidateQuiz(payload string, plan Plan, total int, markers []string) (*QuizResult, error) {
	var root any
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return nil, newError(KindMalformedResponse, "failed to parse LLM response: %v", err)
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, newError(KindInvalidStructure, "top-level value is not an object")
	}
	rawQuestions, ok := obj["questions"]
	if !ok {
		return nil, newError(KindInvalidStructure, `missing "questions" key`)
	}
	list, ok := rawQuestions.([]any)
	if !ok {
		return nil, newError(KindInvalidStructure, `"questions" is not an array`)
	}

	// Count what came back per type. Entries whose type tag does not parse
	// are skipped here; they still fail per-question validation below.
	generated := make(map[QuestionType]int)
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := ParseQuestionType(stringValue(m["type"])); ok {
			generated[t]++
		}
	}
	for _, t := range TypeOrder {
		if want := plan[t]; want > 0 && generated[t] != want {
			log.Printf("quiz validation: LLM generated %d %q questions, %d were requested", generated[t], t, want)
		}
	}

	if len(list) != total {
		return nil, newError(KindCountMismatch, "LLM generated %d questions, %d were requested", len(list), total)
	}

	questions := make([]Question, 0, len(list))
	for i, entry := range list {
		q, err := validateQuestion(i, entry, markers)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}

	return &QuizResult{Questions: questions}, nil
}

func validateQuestion(idx int, entry any, markers []string) (*Question, error) {
	m, ok := entry.(map[string]any)
	if !ok {
		return nil, newError(KindInvalidQuestionFormat, "question %d is not an object", idx)
	}

	qType, ok := ParseQuestionType(stringValue(m["type"]))
	if !ok {
		return nil, newError(KindInvalidQuestionType, "question %d has invalid type %q", idx, stringValue(m["type"]))
	}

	text := stringValue(m["question"])

	options, err := optionStrings(idx, m["options"])
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		if _, dup := seen[opt]; dup {
			return nil, newError(KindDuplicateOptions, "question %d options must be unique", idx)
		}
		seen[opt] = struct{}{}
	}

	correct, err := correctAnswerStrings(idx, m["correct_answers"], seen)
	if err != nil {
		return nil, err
	}

	switch qType {
	case SingleCorrect:
		if len(options) != 4 || len(correct) != 1 {
			return nil, newError(KindInvalidSingleCorrectFormat,
				"question %d: single_correct requires 4 options and 1 correct answer, got %d options and %d correct answers",
				idx, len(options), len(correct))
		}
	case MultipleCorrect:
		if len(options) != 4 || len(correct) < 2 {
			return nil, newError(KindInvalidMultipleCorrectFormat,
				"question %d: multiple_correct requires 4 options and 2 or more correct answers, got %d options and %d correct answers",
				idx, len(options), len(correct))
		}
		if !containsMarker(text, markers) {
			return nil, newError(KindMissingSelectAllMarker,
				"question %d: multiple_correct question text lacks a \"select all that apply\" marker", idx)
		}
	case YesNo:
		if len(options) != 2 || len(correct) != 1 {
			return nil, newError(KindInvalidYesNoFormat,
				"question %d: yes_no requires 2 options and 1 correct answer, got %d options and %d correct answers",
				idx, len(options), len(correct))
		}
	}

	return &Question{Type: qType, Question: text, Options: options, CorrectAnswers: correct}, nil
}

func optionStrings(idx int, raw any) ([]string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, newError(KindInvalidOptions, "question %d options must be a list of non-empty strings", idx)
	}
	options := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, newError(KindInvalidOptions, "question %d options must be a list of non-empty strings", idx)
		}
		options = append(options, s)
	}
	return options, nil
}

func correctAnswerStrings(idx int, raw any, options map[string]struct{}) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, newError(KindInvalidQuestionFormat, "question %d correct_answers must be an array", idx)
	}
	correct := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, newError(KindCorrectAnswerNotInOptions,
				"question %d correct_answers must be drawn verbatim from options", idx)
		}
		if _, present := options[s]; !present {
			return nil, newError(KindCorrectAnswerNotInOptions,
				"question %d correct answer %q is not among the options", idx, s)
		}
		correct = append(correct, s)
	}
	return correct, nil
}

func containsMarker(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
