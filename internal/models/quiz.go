package models

// GenerateQuizRequest is the payload for synchronous quiz generation. The
// per-type counts are pointers: a nil or negative value means "let the
// planner decide", zero pins the type to zero questions.
type GenerateQuizRequest struct {
	FileID             string `json:"file_id"`
	TotalQuestions     int    `json:"total_questions"`
	NumSingleCorrect   *int   `json:"num_single_correct"`
	NumMultipleCorrect *int   `json:"num_multiple_correct"`
	NumYesNo           *int   `json:"num_yes_no"`
	Language           string `json:"language"`
}
