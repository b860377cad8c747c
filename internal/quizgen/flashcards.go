package quizgen

import (
	"encoding/json"
	"log"
	"strings"
)

// ValidateFlashcards parses a normalized LLM response into flashcards. The
// policy here is deliberately more permissive than quiz validation: the
// payload must be an array of objects, but individual cards missing a
// question or answer are dropped with a warning instead of failing the
// batch. An empty result after filtering is valid and signals insufficient
// source content, which is distinct from a parse failure.
func ValidateFlashcards(payload string) ([]Flashcard, error) {
	var root any
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return nil, newError(KindMalformedResponse, "failed to parse LLM response: %v", err)
	}

	list, ok := root.([]any)
	if !ok {
		return nil, newError(KindInvalidFlashcardFormat, "response is not an array of flashcards")
	}

	cards := make([]Flashcard, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, newError(KindInvalidFlashcardFormat, "flashcard %d is not an object", i)
		}

		question := stringValue(m["question"])
		answer := stringValue(m["answer"])
		if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
			log.Printf("skipping malformed flashcard %d: missing question or answer", i)
			continue
		}

		cards = append(cards, Flashcard{Question: question, Answer: answer})
	}

	return cards, nil
}
