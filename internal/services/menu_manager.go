package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VitaliyFgiol/Bot/internal/fsm"
	"github.com/VitaliyFgiol/Bot/internal/models"
	tgmodels "github.com/go-telegram/bot/models"
)

const (
	msgNoGuidelines = "Методические указания по этой теме отсутствуют."
	msgNoQuiz       = "Тесты по этой теме отсутствуют."
	msgRetakeLocked = "Вы уже проходили этот тест. Повторное прохождение будет доступно через 24 часа."
)

// Header prepended to guideline pages takes a few dozen characters out of
// the page budget.
const guidelineHeaderReserve = 64

type GuidelineSource interface {
	GetByTopic(topic string) ([]string, error)
}

type QuizSource interface {
	GetByTopic(topic string) ([]models.QuizQuestion, error)
	Write(topic string, questions []models.QuizQuestion) error
}

type ResultSink interface {
	Record(result *models.QuizResult) error
	HasPassed(userID int64, topic string) (bool, error)
	CanRetake(userID int64, topic string, now time.Time) (bool, error)
}

// MenuManager is the per-chat UI state machine. Every transition runs under
// the chat's session lock and ends with the chat's single menu message
// showing the new view: the message is edited in place, and if the edit
// fails the stale message is deleted and a fresh one sent.
type MenuManager struct {
	transport          Transport
	sessions           *SessionStore
	guidelines         GuidelineSource
	quizzes            QuizSource
	results            ResultSink
	generator          *QuizGenerator
	topics             []string
	pageSize           int
	pageLimit          int
	enforceEligibility bool
	now                func() time.Time
}

func NewMenuManager(
	transport Transport,
	sessions *SessionStore,
	guidelines GuidelineSource,
	quizzes QuizSource,
	results ResultSink,
	generator *QuizGenerator,
	topics []string,
	enforceEligibility bool,
) *MenuManager {
	return &MenuManager{
		transport:          transport,
		sessions:           sessions,
		guidelines:         guidelines,
		quizzes:            quizzes,
		results:            results,
		generator:          generator,
		topics:             topics,
		pageSize:           4,
		pageLimit:          PageLimit - guidelineHeaderReserve,
		enforceEligibility: enforceEligibility,
		now:                time.Now,
	}
}

// OpenMenu renders the main menu or a topic-list page. pushHistory is false
// when the move is a re-render of the same level (page flips, "back",
// returning to topics after a quiz).
func (m *MenuManager) OpenMenu(ctx context.Context, chatID int64, menu fsm.MenuKind, page int, pushHistory bool) error {
	return m.sessions.WithSession(chatID, func(s *models.ChatSession) error {
		return m.openMenuLocked(ctx, s, menu, page, pushHistory)
	})
}

func (m *MenuManager) openMenuLocked(ctx context.Context, s *models.ChatSession, menu fsm.MenuKind, page int, push bool) error {
	if page < 1 {
		page = 1
	}
	if maxPage := (len(m.topics) + m.pageSize - 1) / m.pageSize; maxPage > 0 && page > maxPage {
		page = maxPage
	}

	if push {
		m.pushHistory(s, menu)
	}
	s.Guideline = nil
	s.Quiz = nil

	if err := m.renderSurface(ctx, s, menuText(menu), m.menuKeyboard(menu, page)); err != nil {
		return err
	}
	s.CurrentMenu = menu
	s.MenuPage = page
	return nil
}

// pushHistory records the menu being left. The guideline pages view is
// never recorded: "back" from anywhere past it should land on the topic
// list that opened it.
func (m *MenuManager) pushHistory(s *models.ChatSession, next fsm.MenuKind) {
	if s.CurrentMenu == "" || s.CurrentMenu == next || s.CurrentMenu == fsm.MenuGuidelinePages {
		return
	}
	s.MenuHistory = append(s.MenuHistory, s.CurrentMenu)
}

// Back discards any open guideline view or quiz, pops the previous menu
// from the history and re-renders it. An empty history falls back to the
// main menu, so Back always succeeds.
func (m *MenuManager) Back(ctx context.Context, chatID int64) error {
	return m.sessions.WithSession(chatID, func(s *models.ChatSession) error {
		prev := fsm.MenuMain
		if n := len(s.MenuHistory); n > 0 {
			prev = s.MenuHistory[n-1]
			s.MenuHistory = s.MenuHistory[:n-1]
		}
		return m.openMenuLocked(ctx, s, prev, 1, false)
	})
}

// BackToTopics returns from a quiz summary to the testing topic list.
func (m *MenuManager) BackToTopics(ctx context.Context, chatID int64) error {
	return m.OpenMenu(ctx, chatID, fsm.MenuTesting, 1, false)
}

// OpenGuideline loads the topic's guideline text, paginates it and shows
// the first page. Missing material produces a plain message and changes no
// state.
func (m *MenuManager) OpenGuideline(ctx context.Context, chatID int64, topic string) error {
	return m.sessions.WithSession(chatID, func(s *models.ChatSession) error {
		blocks, err := m.guidelines.GetByTopic(topic)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			_, err := m.transport.SendMessage(ctx, chatID, msgNoGuidelines, nil)
			return err
		}

		pages := SplitIntoPages(strings.Join(blocks, "\n\n"), m.pageLimit)

		m.pushHistory(s, fsm.MenuGuidelinePages)
		s.Quiz = nil
		s.Guideline = &models.GuidelineView{Topic: topic, Pages: pages}

		if err := m.renderGuideline(ctx, s); err != nil {
			return err
		}
		s.CurrentMenu = fsm.MenuGuidelinePages
		return nil
	})
}

// PageGuideline moves the guideline cursor by delta, clamped at both ends.
// A move past an edge is a no-op.
func (m *MenuManager) PageGuideline(ctx context.Context, chatID int64, delta int) error {
	return m.sessions.WithSession(chatID, func(s *models.ChatSession) error {
		view := s.Guideline
		if view == nil {
			return nil
		}
		next := view.CurrentIndex + delta
		if next < 0 {
			next = 0
		}
		if last := len(view.Pages) - 1; next > last {
			next = last
		}
		if next == view.CurrentIndex {
			return nil
		}
		view.CurrentIndex = next
		return m.renderGuideline(ctx, s)
	})
}

func (m *MenuManager) renderGuideline(ctx context.Context, s *models.ChatSession) error {
	view := s.Guideline
	text := view.Pages[view.CurrentIndex]
	if len(view.Pages) > 1 {
		text = fmt.Sprintf("%s (стр. %d из %d)\n\n%s", view.Topic, view.CurrentIndex+1, len(view.Pages), text)
	}
	return m.renderSurface(ctx, s, text, guidelineKeyboard(view))
}

// StartQuiz loads a quiz for the topic and opens it at question 0. When
// eligibility is enforced, a user who passed the topic within the retake
// cooldown is turned away with a plain message.
func (m *MenuManager) StartQuiz(ctx context.Context, chatID int64, topic string) error {
	return m.sessions.WithSession(chatID, func(s *models.ChatSession) error {
		if m.enforceEligibility {
			passed, err := m.results.HasPassed(chatID, topic)
			if err != nil {
				return err
			}
			if passed {
				ok, err := m.results.CanRetake(chatID, topic, m.now())
				if err != nil {
					return err
				}
				if !ok {
					_, err := m.transport.SendMessage(ctx, chatID, msgRetakeLocked, nil)
					return err
				}
			}
		}

		questions, err := m.quizzes.GetByTopic(topic)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			_, err := m.transport.SendMessage(ctx, chatID, msgNoQuiz, nil)
			return err
		}

		s.Guideline = nil
		s.Quiz = &models.QuizSession{
			Topic:     topic,
			Questions: questions,
			Answers:   make([]int, len(questions)),
		}
		return m.renderQuestion(ctx, s, false)
	})
}

// AnswerQuestion records the chosen option (1-based) at the current index,
// overwriting any earlier choice, and re-renders. It does not advance.
func (m *MenuManager) AnswerQuestion(ctx context.Context, chatID int64, optionIndex int) error {
	return m.sessions.WithSession(chatID, func(s *models.ChatSession) error {
		quiz := s.Quiz
		if quiz == nil {
			return nil
		}
		q := quiz.Questions[quiz.CurrentIndex]
		if optionIndex < 0 || optionIndex >= len(q.Options) {
			return nil
		}
		quiz.Answers[quiz.CurrentIndex] = optionIndex + 1
		return m.renderQuestion(ctx, s, false)
	})
}

// NavigateQuestion moves the quiz cursor by delta, clamped to the question
// range. A move past an edge is a no-op.
func (m *MenuManager) NavigateQuestion(ctx context.Context, chatID int64, delta int) error {
	return m.sessions.WithSession(chatID, func(s *models.ChatSession) error {
		quiz := s.Quiz
		if quiz == nil {
			return nil
		}
		next := quiz.CurrentIndex + delta
		if next < 0 {
			next = 0
		}
		if last := len(quiz.Questions) - 1; next > last {
			next = last
		}
		if next == quiz.CurrentIndex {
			return nil
		}
		quiz.CurrentIndex = next
		return m.renderQuestion(ctx, s, false)
	})
}

// ShowAnswer re-renders the current question with the recorded choice
// spelled out.
func (m *MenuManager) ShowAnswer(ctx context.Context, chatID int64) error {
	return m.sessions.WithSession(chatID, func(s *models.ChatSession) error {
		if s.Quiz == nil {
			return nil
		}
		return m.renderQuestion(ctx, s, true)
	})
}

// FinishQuiz scores the session, records the attempt and shows the summary.
// Unanswered questions never count; neither do questions whose stored
// correct answer was unusable.
func (m *MenuManager) FinishQuiz(ctx context.Context, chatID int64) error {
	return m.sessions.WithSession(chatID, func(s *models.ChatSession) error {
		quiz := s.Quiz
		if quiz == nil {
			return nil
		}

		score := 0
		for i, q := range quiz.Questions {
			if q.CorrectAnswer != 0 && quiz.Answers[i] == q.CorrectAnswer {
				score++
			}
		}

		answers := make([]int, len(quiz.Answers))
		copy(answers, quiz.Answers)
		result := &models.QuizResult{
			UserID:   chatID,
			Topic:    quiz.Topic,
			PassedAt: m.now(),
			Answers:  answers,
			Score:    score,
		}
		if err := m.results.Record(result); err != nil {
			return err
		}

		text := fmt.Sprintf("Ваш результат: %d из %d", score, len(quiz.Questions))
		if err := m.renderSurface(ctx, s, text, finishKeyboard()); err != nil {
			return err
		}
		s.Quiz = nil
		return nil
	})
}

// GenerateQuiz runs the placeholder generator over the topic's guideline
// material and stores the produced questions as a new quiz variant.
func (m *MenuManager) GenerateQuiz(ctx context.Context, chatID int64, topic string) error {
	blocks, err := m.guidelines.GetByTopic(topic)
	if err != nil {
		return err
	}
	questions := m.generator.Generate(topic, blocks)
	if err := m.quizzes.Write(topic, questions); err != nil {
		return err
	}
	_, err = m.transport.SendMessage(ctx, chatID,
		fmt.Sprintf("Тесты по теме «%s» сгенерированы и записаны в таблицу.", topic), nil)
	return err
}

func (m *MenuManager) renderQuestion(ctx context.Context, s *models.ChatSession, echoAnswer bool) error {
	quiz := s.Quiz
	q := quiz.Questions[quiz.CurrentIndex]

	var b strings.Builder
	fmt.Fprintf(&b, "Вопрос %d из %d\n\n%s", quiz.CurrentIndex+1, len(quiz.Questions), q.Question)
	if echoAnswer {
		b.WriteString("\n\nВаш текущий ответ: ")
		b.WriteString(answerLabel(q, quiz.Answers[quiz.CurrentIndex]))
	}
	return m.renderSurface(ctx, s, b.String(), questionKeyboard(quiz))
}

// renderSurface points the chat's single menu message at the new view.
// Edit failures (message deleted by the user, content unchanged) recover by
// deleting the stale message and sending a fresh one; the delete itself is
// best-effort. Either way exactly one live menu message remains.
func (m *MenuManager) renderSurface(ctx context.Context, s *models.ChatSession, text string, markup tgmodels.ReplyMarkup) error {
	if s.MenuMessageID != 0 {
		if err := m.transport.EditMessageText(ctx, s.ChatID, s.MenuMessageID, text, markup); err == nil {
			return nil
		}
		_ = m.transport.DeleteMessage(ctx, s.ChatID, s.MenuMessageID)
	}
	id, err := m.transport.SendMessage(ctx, s.ChatID, text, markup)
	if err != nil {
		return err
	}
	s.MenuMessageID = id
	return nil
}

func menuText(menu fsm.MenuKind) string {
	switch menu {
	case fsm.MenuTesting:
		return "Выберите тему для тестирования"
	case fsm.MenuGuidelines:
		return "Методические указания"
	case fsm.MenuGenerateTest:
		return "Сгенерировать тест по теме"
	default:
		return "Меню"
	}
}

func answerLabel(q models.QuizQuestion, answer int) string {
	if answer < 1 || answer > len(q.Options) {
		return "Ответ не выбран."
	}
	return q.Options[answer-1]
}
