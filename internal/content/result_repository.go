package content

import (
	"strconv"
	"strings"
	"time"

	"github.com/VitaliyFgiol/Bot/internal/models"
	"github.com/VitaliyFgiol/Bot/internal/sheets"
)

// Result rows are (user id, topic, timestamp, answers joined with "|",
// score), appended one per attempt and never rewritten.
const resultRange = "UserAnswers!A:E"

const resultTimeLayout = "2006-01-02 15:04:05"

// RetakeCooldown is how long a user has to wait after an attempt before the
// same topic may be taken again.
const RetakeCooldown = 24 * time.Hour

type ResultRepository struct {
	store         sheets.Store
	spreadsheetID string
}

func NewResultRepository(store sheets.Store, spreadsheetID string) *ResultRepository {
	return &ResultRepository{store: store, spreadsheetID: spreadsheetID}
}

func (r *ResultRepository) Record(result *models.QuizResult) error {
	answers := make([]string, len(result.Answers))
	for i, a := range result.Answers {
		answers[i] = strconv.Itoa(a)
	}
	row := []string{
		strconv.FormatInt(result.UserID, 10),
		result.Topic,
		result.PassedAt.Format(resultTimeLayout),
		strings.Join(answers, "|"),
		strconv.Itoa(result.Score),
	}
	return r.store.AppendRow(r.spreadsheetID, resultRange, row)
}

// HasPassed reports whether any attempt for (user, topic) is on record.
func (r *ResultRepository) HasPassed(userID int64, topic string) (bool, error) {
	rows, err := r.store.ReadRange(r.spreadsheetID, resultRange)
	if err != nil {
		return false, err
	}
	id := strconv.FormatInt(userID, 10)
	for _, row := range rows {
		if len(row) > 1 && row[0] == id && row[1] == topic {
			return true, nil
		}
	}
	return false, nil
}

// CanRetake reports whether the cooldown since the user's most recent
// attempt for the topic has elapsed. No attempt on record means the topic
// may be taken. Rows with unreadable timestamps are ignored.
func (r *ResultRepository) CanRetake(userID int64, topic string, now time.Time) (bool, error) {
	rows, err := r.store.ReadRange(r.spreadsheetID, resultRange)
	if err != nil {
		return false, err
	}

	id := strconv.FormatInt(userID, 10)
	var latest time.Time
	for _, row := range rows {
		if len(row) < 3 || row[0] != id || row[1] != topic {
			continue
		}
		passedAt, err := time.Parse(resultTimeLayout, row[2])
		if err != nil {
			continue
		}
		if passedAt.After(latest) {
			latest = passedAt
		}
	}

	if latest.IsZero() {
		return true, nil
	}
	return now.Sub(latest) >= RetakeCooldown, nil
}

// PendingReminders lists, for every user seen in the results sheet, the
// catalog topics that user has no attempt for.
func (r *ResultRepository) PendingReminders(topics []string) ([]models.Reminder, error) {
	rows, err := r.store.ReadRange(r.spreadsheetID, resultRange)
	if err != nil {
		return nil, err
	}

	passed := make(map[int64]map[string]bool)
	var order []int64
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		userID, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		if passed[userID] == nil {
			passed[userID] = make(map[string]bool)
			order = append(order, userID)
		}
		passed[userID][row[1]] = true
	}

	var reminders []models.Reminder
	for _, userID := range order {
		for _, topic := range topics {
			if !passed[userID][topic] {
				reminders = append(reminders, models.Reminder{ChatID: userID, Topic: topic})
			}
		}
	}
	return reminders, nil
}
