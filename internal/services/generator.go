package services

import (
	"fmt"

	"github.com/VitaliyFgiol/Bot/internal/models"
)

// QuizGenerator synthesizes quiz questions from guideline material.
//
// The synthesis itself is a placeholder: a fixed-size batch of template
// questions with the first option marked correct. The material argument is
// accepted so the real algorithm can use it without a contract change.
type QuizGenerator struct {
	batchSize int
}

func NewQuizGenerator() *QuizGenerator {
	return &QuizGenerator{batchSize: 10}
}

func (g *QuizGenerator) Generate(topic string, material []string) []models.QuizQuestion {
	_ = material // TODO: feed the guideline text to a real generator

	questions := make([]models.QuizQuestion, 0, g.batchSize)
	for i := 0; i < g.batchSize; i++ {
		questions = append(questions, models.QuizQuestion{
			Question:      fmt.Sprintf("Вопрос %d по теме %s", i+1, topic),
			Options:       []string{"Вариант 1", "Вариант 2", "Вариант 3", "Вариант 4"},
			CorrectAnswer: 1,
		})
	}
	return questions
}
