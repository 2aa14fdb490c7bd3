package models

import "time"

// QuizResult is one completed quiz attempt. Attempts are append-only: a
// retake produces a new result row, never overwrites a prior one.
type QuizResult struct {
	UserID   int64
	Topic    string
	PassedAt time.Time
	Answers  []int
	Score    int
}

// Reminder identifies a chat that has not yet taken the quiz for a topic.
type Reminder struct {
	ChatID int64
	Topic  string
}
