package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/VitaliyFgiol/Bot/internal/fsm"
	"github.com/VitaliyFgiol/Bot/internal/models"
	tgmodels "github.com/go-telegram/bot/models"
	"pgregory.net/rapid"
)

type renderedMsg struct {
	text   string
	markup tgmodels.ReplyMarkup
}

// fakeTransport records every live message and the last rendered content,
// so tests can check the single-surface invariant directly. Reminder
// deletions arrive from timer goroutines, hence the mutex.
type fakeTransport struct {
	mu      sync.Mutex
	nextID  int
	live    map[int]renderedMsg
	editErr error
	sendErr error
	sends   int
	edits   int
	deletes int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{live: map[int]renderedMsg{}}
}

func (t *fakeTransport) SendMessage(_ context.Context, _ int64, text string, markup tgmodels.ReplyMarkup) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendErr != nil {
		return 0, t.sendErr
	}
	t.sends++
	t.nextID++
	t.live[t.nextID] = renderedMsg{text: text, markup: markup}
	return t.nextID, nil
}

func (t *fakeTransport) EditMessageText(_ context.Context, _ int64, messageID int, text string, markup tgmodels.ReplyMarkup) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.editErr != nil {
		return t.editErr
	}
	if _, ok := t.live[messageID]; !ok {
		return errors.New("message to edit not found")
	}
	t.edits++
	t.live[messageID] = renderedMsg{text: text, markup: markup}
	return nil
}

func (t *fakeTransport) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deletes++
	delete(t.live, messageID)
	return nil
}

func (t *fakeTransport) message(id int) renderedMsg {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live[id]
}

func (t *fakeTransport) liveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

func (t *fakeTransport) sendCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sends
}

func (t *fakeTransport) deleteCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deletes
}

func (t *fakeTransport) isLive(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.live[id]
	return ok
}

type fakeGuidelines struct {
	byTopic map[string][]string
	err     error
}

func (f *fakeGuidelines) GetByTopic(topic string) ([]string, error) {
	return f.byTopic[topic], f.err
}

type fakeQuizzes struct {
	byTopic map[string][]models.QuizQuestion
	written map[string][][]models.QuizQuestion
}

func (f *fakeQuizzes) GetByTopic(topic string) ([]models.QuizQuestion, error) {
	return f.byTopic[topic], nil
}

func (f *fakeQuizzes) Write(topic string, questions []models.QuizQuestion) error {
	if f.written == nil {
		f.written = map[string][][]models.QuizQuestion{}
	}
	f.written[topic] = append(f.written[topic], questions)
	return nil
}

type fakeResults struct {
	recorded  []*models.QuizResult
	passed    map[string]bool
	noRetake  map[string]bool
	recordErr error
}

func resultKey(userID int64, topic string) string {
	return fmt.Sprintf("%d|%s", userID, topic)
}

func (f *fakeResults) Record(result *models.QuizResult) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, result)
	return nil
}

func (f *fakeResults) HasPassed(userID int64, topic string) (bool, error) {
	return f.passed[resultKey(userID, topic)], nil
}

func (f *fakeResults) CanRetake(userID int64, topic string, _ time.Time) (bool, error) {
	return !f.noRetake[resultKey(userID, topic)], nil
}

type managerFixture struct {
	manager    *MenuManager
	transport  *fakeTransport
	sessions   *SessionStore
	guidelines *fakeGuidelines
	quizzes    *fakeQuizzes
	results    *fakeResults
}

func newManagerFixture() *managerFixture {
	topics := []string{
		"Тема 1", "Тема 2", "Тема 3", "Тема 4",
		"Тема 5", "Тема 6", "Тема 7", "Тема 8",
	}
	transport := newFakeTransport()
	sessions := NewSessionStore()
	guidelines := &fakeGuidelines{byTopic: map[string][]string{}}
	quizzes := &fakeQuizzes{byTopic: map[string][]models.QuizQuestion{}}
	results := &fakeResults{passed: map[string]bool{}, noRetake: map[string]bool{}}

	manager := NewMenuManager(transport, sessions, guidelines, quizzes, results, NewQuizGenerator(), topics, true)
	return &managerFixture{
		manager:    manager,
		transport:  transport,
		sessions:   sessions,
		guidelines: guidelines,
		quizzes:    quizzes,
		results:    results,
	}
}

func (f *managerFixture) session(t rapid.TB, chatID int64) models.ChatSession {
	t.Helper()
	var snapshot models.ChatSession
	err := f.sessions.WithSession(chatID, func(s *models.ChatSession) error {
		snapshot = *s
		return nil
	})
	if err != nil {
		t.Fatalf("read session: %v", err)
	}
	return snapshot
}

func markupButtons(t testing.TB, markup tgmodels.ReplyMarkup) []tgmodels.InlineKeyboardButton {
	t.Helper()
	kb, ok := markup.(*tgmodels.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("expected inline keyboard, got %T", markup)
	}
	var buttons []tgmodels.InlineKeyboardButton
	for _, row := range kb.InlineKeyboard {
		buttons = append(buttons, row...)
	}
	return buttons
}

func hasButton(buttons []tgmodels.InlineKeyboardButton, callbackData string) bool {
	for _, b := range buttons {
		if b.CallbackData == callbackData {
			return true
		}
	}
	return false
}

const chatID = int64(100500)

func TestOpenMenu_SingleSurface(t *testing.T) {
	f := newManagerFixture()
	ctx := context.Background()

	moves := []fsm.MenuKind{fsm.MenuMain, fsm.MenuTesting, fsm.MenuGuidelines, fsm.MenuGenerateTest, fsm.MenuTesting}
	for _, menu := range moves {
		if err := f.manager.OpenMenu(ctx, chatID, menu, 1, true); err != nil {
			t.Fatalf("open %s: %v", menu, err)
		}
	}

	if got := f.transport.liveCount(); got != 1 {
		t.Fatalf("expected exactly one live message, got %d", got)
	}
	s := f.session(t, chatID)
	if !f.transport.isLive(s.MenuMessageID) {
		t.Fatalf("tracked menu message id %d is not live", s.MenuMessageID)
	}
	if s.CurrentMenu != fsm.MenuTesting {
		t.Fatalf("expected current menu testing, got %s", s.CurrentMenu)
	}
}

func TestBack_HistoryLaw(t *testing.T) {
	f := newManagerFixture()
	ctx := context.Background()

	if err := f.manager.OpenMenu(ctx, chatID, fsm.MenuMain, 1, false); err != nil {
		t.Fatal(err)
	}
	if err := f.manager.OpenMenu(ctx, chatID, fsm.MenuTesting, 1, true); err != nil {
		t.Fatal(err)
	}
	if err := f.manager.OpenMenu(ctx, chatID, fsm.MenuGuidelines, 1, true); err != nil {
		t.Fatal(err)
	}

	if err := f.manager.Back(ctx, chatID); err != nil {
		t.Fatal(err)
	}
	if got := f.session(t, chatID).CurrentMenu; got != fsm.MenuTesting {
		t.Fatalf("back should return to testing, got %s", got)
	}

	if err := f.manager.Back(ctx, chatID); err != nil {
		t.Fatal(err)
	}
	if got := f.session(t, chatID).CurrentMenu; got != fsm.MenuMain {
		t.Fatalf("back should return to main, got %s", got)
	}

	// Empty history still lands on the main menu.
	if err := f.manager.Back(ctx, chatID); err != nil {
		t.Fatal(err)
	}
	s := f.session(t, chatID)
	if s.CurrentMenu != fsm.MenuMain || len(s.MenuHistory) != 0 {
		t.Fatalf("back on empty history: menu=%s history=%v", s.CurrentMenu, s.MenuHistory)
	}
}

func TestHistory_TopNeverCurrent(t *testing.T) {
	f := newManagerFixture()
	ctx := context.Background()

	moves := []fsm.MenuKind{fsm.MenuMain, fsm.MenuTesting, fsm.MenuTesting, fsm.MenuGuidelines, fsm.MenuGuidelines}
	for _, menu := range moves {
		if err := f.manager.OpenMenu(ctx, chatID, menu, 1, true); err != nil {
			t.Fatal(err)
		}
		s := f.session(t, chatID)
		if n := len(s.MenuHistory); n > 0 && s.MenuHistory[n-1] == s.CurrentMenu {
			t.Fatalf("history top %s equals current menu", s.CurrentMenu)
		}
	}
}

func TestTopicListPagination_Scenario(t *testing.T) {
	f := newManagerFixture()
	ctx := context.Background()

	if err := f.manager.OpenMenu(ctx, chatID, fsm.MenuTesting, 1, false); err != nil {
		t.Fatal(err)
	}
	s := f.session(t, chatID)
	buttons := markupButtons(t, f.transport.message(s.MenuMessageID).markup)

	for i := 1; i <= 4; i++ {
		if !hasButton(buttons, fmt.Sprintf("testing_topic:Тема %d", i)) {
			t.Fatalf("page 1 must list topic %d", i)
		}
	}
	if hasButton(buttons, "testing_topic:Тема 5") {
		t.Fatal("page 1 must not list topic 5")
	}
	if !hasButton(buttons, "testing_page:2") {
		t.Fatal("page 1 must have a next control")
	}
	if hasButton(buttons, "testing_page:0") {
		t.Fatal("page 1 must not have a prev control")
	}

	if err := f.manager.OpenMenu(ctx, chatID, fsm.MenuTesting, 2, false); err != nil {
		t.Fatal(err)
	}
	s = f.session(t, chatID)
	buttons = markupButtons(t, f.transport.message(s.MenuMessageID).markup)

	for i := 5; i <= 8; i++ {
		if !hasButton(buttons, fmt.Sprintf("testing_topic:Тема %d", i)) {
			t.Fatalf("page 2 must list topic %d", i)
		}
	}
	if !hasButton(buttons, "testing_page:1") {
		t.Fatal("page 2 must have a prev control")
	}
	if hasButton(buttons, "testing_page:3") {
		t.Fatal("page 2 must not have a next control")
	}
}

func TestRenderSurface_EditFallback(t *testing.T) {
	f := newManagerFixture()
	ctx := context.Background()

	if err := f.manager.OpenMenu(ctx, chatID, fsm.MenuMain, 1, false); err != nil {
		t.Fatal(err)
	}
	firstID := f.session(t, chatID).MenuMessageID

	f.transport.editErr = errors.New("message is not modified")
	if err := f.manager.OpenMenu(ctx, chatID, fsm.MenuTesting, 1, true); err != nil {
		t.Fatal(err)
	}
	f.transport.editErr = nil

	s := f.session(t, chatID)
	if s.MenuMessageID == firstID {
		t.Fatal("fallback must record the id of the resent message")
	}
	if got := f.transport.liveCount(); got != 1 {
		t.Fatalf("fallback must leave exactly one live message, got %d", got)
	}
	if !f.transport.isLive(s.MenuMessageID) {
		t.Fatal("tracked message is not the live one")
	}
}

func TestOpenGuideline_MissingContent(t *testing.T) {
	f := newManagerFixture()
	ctx := context.Background()

	if err := f.manager.OpenMenu(ctx, chatID, fsm.MenuGuidelines, 1, true); err != nil {
		t.Fatal(err)
	}
	before := f.session(t, chatID)

	if err := f.manager.OpenGuideline(ctx, chatID, "Тема 3"); err != nil {
		t.Fatal(err)
	}

	after := f.session(t, chatID)
	if after.Guideline != nil || after.CurrentMenu != before.CurrentMenu {
		t.Fatal("missing content must not create a guideline view")
	}
}

func TestGuidelinePaging_Clamped(t *testing.T) {
	f := newManagerFixture()
	ctx := context.Background()

	long := "Раз два три. Четыре пять шесть. Семь восемь девять."
	f.guidelines.byTopic["Тема 1"] = []string{long}
	f.manager.pageLimit = 20

	if err := f.manager.OpenMenu(ctx, chatID, fsm.MenuGuidelines, 1, true); err != nil {
		t.Fatal(err)
	}
	if err := f.manager.OpenGuideline(ctx, chatID, "Тема 1"); err != nil {
		t.Fatal(err)
	}

	s := f.session(t, chatID)
	if s.Guideline == nil || len(s.Guideline.Pages) < 2 {
		t.Fatalf("expected a multi-page view, got %+v", s.Guideline)
	}
	if s.CurrentMenu != fsm.MenuGuidelinePages {
		t.Fatalf("expected guideline pages menu, got %s", s.CurrentMenu)
	}

	// Prev at page 0 is a no-op.
	if err := f.manager.PageGuideline(ctx, chatID, -1); err != nil {
		t.Fatal(err)
	}
	if got := f.session(t, chatID).Guideline.CurrentIndex; got != 0 {
		t.Fatalf("prev at first page moved cursor to %d", got)
	}

	last := len(s.Guideline.Pages) - 1
	for i := 0; i < last+3; i++ {
		if err := f.manager.PageGuideline(ctx, chatID, +1); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.session(t, chatID).Guideline.CurrentIndex; got != last {
		t.Fatalf("next past last page: cursor %d, want %d", got, last)
	}

	// Back drops the view and returns to the guidelines list.
	if err := f.manager.Back(ctx, chatID); err != nil {
		t.Fatal(err)
	}
	s = f.session(t, chatID)
	if s.Guideline != nil {
		t.Fatal("back must discard the guideline view")
	}
	if s.CurrentMenu != fsm.MenuGuidelines {
		t.Fatalf("back from pages should land on guidelines list, got %s", s.CurrentMenu)
	}
}

func TestGuidelineKeyboard_EdgeControls(t *testing.T) {
	first := &models.GuidelineView{Topic: "t", Pages: []string{"a", "b", "c"}}
	buttons := markupButtons(t, guidelineKeyboard(first))
	if hasButton(buttons, "guideline_prev") {
		t.Fatal("prev must be hidden on the first page")
	}
	if !hasButton(buttons, "guideline_next") {
		t.Fatal("next must be shown before the last page")
	}

	last := &models.GuidelineView{Topic: "t", Pages: []string{"a", "b", "c"}, CurrentIndex: 2}
	buttons = markupButtons(t, guidelineKeyboard(last))
	if !hasButton(buttons, "guideline_prev") {
		t.Fatal("prev must be shown on the last page")
	}
	if hasButton(buttons, "guideline_next") {
		t.Fatal("next must be hidden on the last page")
	}
}

func TestProperty_SingleSurfaceUnderNavigation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newManagerFixture()
		ctx := context.Background()
		f.guidelines.byTopic["Тема 1"] = []string{"Текст указаний."}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 5).Draw(rt, "move") {
			case 0:
				_ = f.manager.OpenMenu(ctx, chatID, fsm.MenuMain, 1, true)
			case 1:
				_ = f.manager.OpenMenu(ctx, chatID, fsm.MenuTesting, rapid.IntRange(1, 2).Draw(rt, "page"), true)
			case 2:
				_ = f.manager.OpenMenu(ctx, chatID, fsm.MenuGuidelines, 1, true)
			case 3:
				_ = f.manager.OpenGuideline(ctx, chatID, "Тема 1")
			case 4:
				_ = f.manager.PageGuideline(ctx, chatID, rapid.IntRange(-1, 1).Draw(rt, "delta"))
			case 5:
				_ = f.manager.Back(ctx, chatID)
			}

			s := f.session(rt, chatID)
			if got := f.transport.liveCount(); got != 1 {
				rt.Fatalf("step %d: %d live messages", i, got)
			}
			if !f.transport.isLive(s.MenuMessageID) {
				rt.Fatalf("step %d: tracked id %d not live", i, s.MenuMessageID)
			}
		}
	})
}
