// Package quizgen contains the deterministic planning and validation engine
// for LLM-generated study aids. Everything in this package is a pure function
// of its inputs; all I/O (LLM calls, persistence) lives in the services layer.
package quizgen

import "strings"

// QuestionType identifies one of the three supported question shapes.
type QuestionType string

const (
	SingleCorrect   QuestionType = "single_correct"
	MultipleCorrect QuestionType = "multiple_correct"
	YesNo           QuestionType = "yes_no"
)

// TypeOrder is the fixed distribution and tie-break order. Auto-distribution
// remainders and explicit-count shortfalls are always assigned in this order.
var TypeOrder = []QuestionType{SingleCorrect, MultipleCorrect, YesNo}

// ParseQuestionType normalizes a raw type tag (case and surrounding
// whitespace) and reports whether it is one of the known types.
func ParseQuestionType(raw string) (QuestionType, bool) {
	switch QuestionType(strings.ToLower(strings.TrimSpace(raw))) {
	case SingleCorrect:
		return SingleCorrect, true
	case MultipleCorrect:
		return MultipleCorrect, true
	case YesNo:
		return YesNo, true
	default:
		return "", false
	}
}

// Question is a single validated quiz question. The JSON field names are the
// wire contract shared with the persisted artifacts and must not change.
type Question struct {
	Type           QuestionType `json:"type"`
	Question       string       `json:"question"`
	Options        []string     `json:"options"`
	CorrectAnswers []string     `json:"correct_answers"`
}

// QuizResult is an ordered sequence of validated questions. It is immutable
// once validation has passed.
type QuizResult struct {
	Questions []Question `json:"questions"`
}

// Flashcard is a single question/answer pair.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
