package handlers

import (
	"context"
	"log"

	"github.com/VitaliyFgiol/Bot/internal/fsm"
	"github.com/VitaliyFgiol/Bot/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

type BotHandler struct {
	bot          *bot.Bot
	errorManager *services.ErrorManager
	menus        *services.MenuManager
}

func NewBotHandler(b *bot.Bot, errorManager *services.ErrorManager, menus *services.MenuManager) *BotHandler {
	return &BotHandler{
		bot:          b,
		errorManager: errorManager,
		menus:        menus,
	}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	defer h.recoverPanic(ctx, update)

	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *BotHandler) recoverPanic(ctx context.Context, update *tgmodels.Update) {
	if r := recover(); r != nil {
		log.Printf("[HANDLER] panic: %v", r)
		h.errorManager.NotifyAdmin(ctx, r, update)
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgmodels.Message) {
	if msg.From == nil || msg.Text != "/start" {
		return
	}
	if err := h.menus.OpenMenu(ctx, msg.Chat.ID, fsm.MenuMain, 1, false); err != nil {
		log.Printf("[HANDLER] open main menu for %d: %v", msg.Chat.ID, err)
	}
}

func (h *BotHandler) handleCallback(ctx context.Context, callback *tgmodels.CallbackQuery) {
	defer h.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	})

	msg := callback.Message.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	action := ParseAction(callback.Data)

	var err error
	switch action.Kind {
	case ActionMenuTesting:
		err = h.menus.OpenMenu(ctx, chatID, fsm.MenuTesting, 1, true)
	case ActionMenuGuidelines:
		err = h.menus.OpenMenu(ctx, chatID, fsm.MenuGuidelines, 1, true)
	case ActionMenuGenerate:
		err = h.menus.OpenMenu(ctx, chatID, fsm.MenuGenerateTest, 1, true)
	case ActionPage:
		err = h.menus.OpenMenu(ctx, chatID, action.Menu, action.Page, false)
	case ActionTopic:
		err = h.handleTopic(ctx, chatID, action)
	case ActionBack:
		err = h.menus.Back(ctx, chatID)
	case ActionBackToTopics:
		err = h.menus.BackToTopics(ctx, chatID)
	case ActionGuidelinePrev:
		err = h.menus.PageGuideline(ctx, chatID, -1)
	case ActionGuidelineNext:
		err = h.menus.PageGuideline(ctx, chatID, +1)
	case ActionAnswer:
		err = h.menus.AnswerQuestion(ctx, chatID, action.Option)
	case ActionPrevQuestion:
		err = h.menus.NavigateQuestion(ctx, chatID, -1)
	case ActionNextQuestion:
		err = h.menus.NavigateQuestion(ctx, chatID, +1)
	case ActionShowAnswer:
		err = h.menus.ShowAnswer(ctx, chatID)
	case ActionFinishTest:
		err = h.menus.FinishQuiz(ctx, chatID)
	case ActionUnknown:
		log.Printf("[HANDLER] unknown callback %q from %d", callback.Data, callback.From.ID)
	}

	if err != nil {
		log.Printf("[HANDLER] callback %q for chat %d: %v", callback.Data, chatID, err)
	}
}

func (h *BotHandler) handleTopic(ctx context.Context, chatID int64, action Action) error {
	switch action.Menu {
	case fsm.MenuTesting:
		return h.menus.StartQuiz(ctx, chatID, action.Topic)
	case fsm.MenuGuidelines:
		return h.menus.OpenGuideline(ctx, chatID, action.Topic)
	case fsm.MenuGenerateTest:
		return h.menus.GenerateQuiz(ctx, chatID, action.Topic)
	}
	return nil
}
