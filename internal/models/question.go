package models

// QuizQuestion is one multiple-choice question.
// CorrectAnswer is a 1-based index into Options; 0 marks a question whose
// stored answer was unusable and which therefore can never be answered
// correctly.
type QuizQuestion struct {
	Question      string
	Options       []string
	CorrectAnswer int
}
