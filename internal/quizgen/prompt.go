package quizgen

import (
	"fmt"
	"strings"
)

// BuildQuizPrompt renders the quiz-generation instruction string. The
// template is deterministic: same plan, language, marker, and content always
// produce the same prompt. marker is the localized "select all that apply"
// phrase a multiple_correct question must embed.
func BuildQuizPrompt(total int, plan Plan, language, marker, content string) string {
	var b strings.Builder

	b.WriteString("You are an expert educational content creator and quiz generator. Construct a quiz from the provided document content.\n\n")
	b.WriteString(fmt.Sprintf("The quiz must contain exactly %d questions.\n", total))
	b.WriteString(fmt.Sprintf("All questions, options, and answers MUST be in the %s language.\n\n", language))

	b.WriteString("Strictly adhere to the following distribution of question types:\n")
	for _, line := range plan.Instructions() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("Requirements per question type:\n")
	b.WriteString("1. single_correct: exactly 1 correct answer out of 4 distinct options.\n")
	b.WriteString(fmt.Sprintf("2. multiple_correct: 2 or more correct answers out of 4 distinct options. The question text MUST include the phrase %q.\n", marker))
	b.WriteString(fmt.Sprintf("3. yes_no: exactly 2 options, [\"Yes\", \"No\"] or their %s equivalents, with exactly 1 correct answer.\n\n", language))

	b.WriteString("Your response MUST be a raw JSON object with strict JSON syntax. Do NOT wrap it in markdown code blocks (```json or ```) and do NOT add any text before or after the JSON.\n")
	b.WriteString("The JSON keys \"type\", \"question\", \"options\" and \"correct_answers\" stay in English; only the content is localized.\n\n")

	b.WriteString(`Example question objects:

{
    "type": "single_correct",
    "question": "What is the primary function of the mitochondria in a eukaryotic cell?",
    "options": ["Protein synthesis", "Energy production", "Waste removal", "Cellular respiration of nutrients"],
    "correct_answers": ["Energy production"]
}

{
    "type": "multiple_correct",
    "question": "Which of the following are rocky planets in our solar system? (select all that apply)",
    "options": ["Mercury", "Jupiter", "Earth", "Neptune"],
    "correct_answers": ["Mercury", "Earth"]
}

{
    "type": "yes_no",
    "question": "Is the sun a star?",
    "options": ["Yes", "No"],
    "correct_answers": ["Yes"]
}

`)

	b.WriteString("Rules:\n")
	b.WriteString("- Every value in \"correct_answers\" must appear verbatim in the \"options\" list.\n")
	b.WriteString("- Options must be distinct and non-empty.\n")
	b.WriteString("- Questions must test understanding of the provided content, not general knowledge.\n\n")

	b.WriteString("If the content is insufficient or unrelated, return exactly:\n\n{\n    \"questions\": []\n}\n")

	b.WriteString("\n---CONTENT START---\n")
	b.WriteString(content)
	b.WriteString("\n---CONTENT END---\n")

	return b.String()
}

// BuildFlashcardPrompt renders the flashcard-generation instruction string.
func BuildFlashcardPrompt(numCards int, language, content string) string {
	var b strings.Builder

	b.WriteString("You are a flashcard generator. Using the following document content, create concise question-answer flashcards.\n\n")
	b.WriteString(fmt.Sprintf("Create exactly %d flashcards.\n", numCards))
	b.WriteString(fmt.Sprintf("Questions and answers must be strictly in the %s language.\n\n", language))

	b.WriteString("Return the flashcards as a raw JSON array with valid JSON syntax, without wrapping it in code blocks (```json or ```) and without any extra text. Each flashcard object has a \"question\" key and an \"answer\" key.\n\n")

	b.WriteString(`Example format:

[
    {
        "question": "What is the capital of France?",
        "answer": "Paris"
    },
    {
        "question": "What is 2+2?",
        "answer": "4"
    }
]

`)

	b.WriteString("If the content is insufficient to generate flashcards, return an empty array: []\n")

	b.WriteString("\n---CONTENT START---\n")
	b.WriteString(content)
	b.WriteString("\n---CONTENT END---\n")

	return b.String()
}
