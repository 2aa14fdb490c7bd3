package models

import "github.com/VitaliyFgiol/Bot/internal/fsm"

// QuizSession is the in-progress state of one user answering questions for
// one topic. Answers is index-aligned with Questions and holds 1-based
// option choices; 0 means the question has not been answered yet.
type QuizSession struct {
	Topic        string
	Questions    []QuizQuestion
	CurrentIndex int
	Answers      []int
}

// GuidelineView is the pagination cursor over guideline text opened for a
// topic.
type GuidelineView struct {
	Topic        string
	Pages        []string
	CurrentIndex int
}

// ChatSession holds all per-chat UI state. MenuMessageID is the single live
// menu message for the chat; at most one such message exists at any time.
// Guideline and Quiz are mutually exclusive: opening one discards the other.
type ChatSession struct {
	ChatID        int64
	CurrentMenu   fsm.MenuKind
	MenuPage      int
	MenuHistory   []fsm.MenuKind
	MenuMessageID int
	Guideline     *GuidelineView
	Quiz          *QuizSession
}
