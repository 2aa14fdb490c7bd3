package content

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/VitaliyFgiol/Bot/internal/models"
	"github.com/VitaliyFgiol/Bot/internal/sheets"
)

// A quiz row holds the topic in the first cell, then one 3-cell group per
// question: question text, options joined with "|", 1-based index of the
// correct option. Several rows may exist for the same topic; GetByTopic
// samples one of them.
const quizSheet = "Tests"

const optionSeparator = "|"

type QuizRepository struct {
	store         sheets.Store
	spreadsheetID string
}

func NewQuizRepository(store sheets.Store, spreadsheetID string) *QuizRepository {
	return &QuizRepository{store: store, spreadsheetID: spreadsheetID}
}

// GetByTopic picks one stored quiz variant for the topic at random and
// decodes it. Returns nil when no variant exists or none of its question
// groups decode.
func (r *QuizRepository) GetByTopic(topic string) ([]models.QuizQuestion, error) {
	rows, err := r.store.ReadRange(r.spreadsheetID, quizSheet)
	if err != nil {
		return nil, err
	}

	var candidates [][]string
	for _, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == topic {
			candidates = append(candidates, row)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	questions := decodeQuizRow(candidates[rand.Intn(len(candidates))])
	if len(questions) == 0 {
		return nil, nil
	}
	return questions, nil
}

// Write flattens the questions into a single row and appends it, becoming
// one more variant for the topic.
func (r *QuizRepository) Write(topic string, questions []models.QuizQuestion) error {
	row := make([]string, 0, 1+3*len(questions))
	row = append(row, topic)
	for _, q := range questions {
		row = append(row,
			q.Question,
			strings.Join(q.Options, optionSeparator),
			strconv.Itoa(q.CorrectAnswer),
		)
	}
	return r.store.AppendRow(r.spreadsheetID, quizSheet, row)
}

func decodeQuizRow(row []string) []models.QuizQuestion {
	var questions []models.QuizQuestion
	for i := 1; i+2 < len(row); i += 3 {
		question := strings.TrimSpace(row[i])
		options := splitOptions(row[i+1])
		if question == "" || len(options) == 0 {
			continue
		}

		// A stored answer index that does not name an option makes the
		// question unanswerable rather than rejecting the whole quiz.
		answer, err := strconv.Atoi(strings.TrimSpace(row[i+2]))
		if err != nil || answer < 1 || answer > len(options) {
			answer = 0
		}

		questions = append(questions, models.QuizQuestion{
			Question:      question,
			Options:       options,
			CorrectAnswer: answer,
		})
	}
	return questions
}

func splitOptions(cell string) []string {
	var options []string
	for _, part := range strings.Split(cell, optionSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			options = append(options, part)
		}
	}
	return options
}
