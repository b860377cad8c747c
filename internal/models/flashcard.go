package models

type GenerateFlashcardsRequest struct {
	FileID          string `json:"file_id"`
	TotalFlashcards int    `json:"total_flashcards"`
	Language        string `json:"language"`
}
