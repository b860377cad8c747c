package quizgen

import (
	"errors"
	"fmt"
)

// ErrorKind is a machine-readable reason for rejecting a plan or an LLM
// response. Handlers map these to HTTP statuses; nothing in this package
// knows about transport.
type ErrorKind string

const (
	// Planning errors.
	KindExceedsTotal  ErrorKind = "exceeds_total"
	KindUnfulfillable ErrorKind = "unfulfillable"

	// Parse and structural errors.
	KindMalformedResponse     ErrorKind = "malformed_response"
	KindInvalidStructure      ErrorKind = "invalid_structure"
	KindInvalidQuestionFormat ErrorKind = "invalid_question_format"
	KindInvalidQuestionType   ErrorKind = "invalid_question_type"

	// Content-rule errors.
	KindCountMismatch                ErrorKind = "count_mismatch"
	KindInvalidOptions               ErrorKind = "invalid_options"
	KindDuplicateOptions             ErrorKind = "duplicate_options"
	KindCorrectAnswerNotInOptions    ErrorKind = "correct_answer_not_in_options"
	KindInvalidSingleCorrectFormat   ErrorKind = "invalid_single_correct_format"
	KindInvalidMultipleCorrectFormat ErrorKind = "invalid_multiple_correct_format"
	KindMissingSelectAllMarker       ErrorKind = "missing_select_all_marker"
	KindInvalidYesNoFormat           ErrorKind = "invalid_yes_no_format"

	// Flashcard errors.
	KindInvalidFlashcardFormat ErrorKind = "invalid_flashcard_format"
)

// ValidationError carries a single typed rejection reason. Validation fails
// closed: the first violation aborts the whole batch and no partial result is
// returned alongside the error.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind when err is a ValidationError.
func KindOf(err error) (ErrorKind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}
