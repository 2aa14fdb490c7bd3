package services

import (
	"fmt"

	"github.com/VitaliyFgiol/Bot/internal/fsm"
	"github.com/VitaliyFgiol/Bot/internal/models"
	tgmodels "github.com/go-telegram/bot/models"
)

func (m *MenuManager) menuKeyboard(menu fsm.MenuKind, page int) *tgmodels.InlineKeyboardMarkup {
	if !menu.IsTopicList() {
		return mainKeyboard()
	}

	start := (page - 1) * m.pageSize
	end := start + m.pageSize
	if end > len(m.topics) {
		end = len(m.topics)
	}
	if start > end {
		start = end
	}

	var rows [][]tgmodels.InlineKeyboardButton
	var row []tgmodels.InlineKeyboardButton
	for _, topic := range m.topics[start:end] {
		row = append(row, tgmodels.InlineKeyboardButton{
			Text:         topic,
			CallbackData: fmt.Sprintf("%s_topic:%s", menu, topic),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var nav []tgmodels.InlineKeyboardButton
	if page > 1 {
		nav = append(nav, tgmodels.InlineKeyboardButton{
			Text:         "⬅️",
			CallbackData: fmt.Sprintf("%s_page:%d", menu, page-1),
		})
	}
	if end < len(m.topics) {
		nav = append(nav, tgmodels.InlineKeyboardButton{
			Text:         "➡️",
			CallbackData: fmt.Sprintf("%s_page:%d", menu, page+1),
		})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, backRow())
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func mainKeyboard() *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{{Text: "Тестирование", CallbackData: "menu_testing"}},
			{{Text: "Методические указания", CallbackData: "menu_guidelines"}},
			{{Text: "Генерация тестов", CallbackData: "menu_generate_tests"}},
		},
	}
}

func guidelineKeyboard(view *models.GuidelineView) *tgmodels.InlineKeyboardMarkup {
	var nav []tgmodels.InlineKeyboardButton
	if view.CurrentIndex > 0 {
		nav = append(nav, tgmodels.InlineKeyboardButton{Text: "⬅️", CallbackData: "guideline_prev"})
	}
	if view.CurrentIndex < len(view.Pages)-1 {
		nav = append(nav, tgmodels.InlineKeyboardButton{Text: "➡️", CallbackData: "guideline_next"})
	}

	var rows [][]tgmodels.InlineKeyboardButton
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, backRow())
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func questionKeyboard(quiz *models.QuizSession) *tgmodels.InlineKeyboardMarkup {
	q := quiz.Questions[quiz.CurrentIndex]
	last := len(quiz.Questions) - 1

	var rows [][]tgmodels.InlineKeyboardButton
	var row []tgmodels.InlineKeyboardButton
	for i, option := range q.Options {
		row = append(row, tgmodels.InlineKeyboardButton{
			Text:         option,
			CallbackData: fmt.Sprintf("answer:%d", i),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var nav []tgmodels.InlineKeyboardButton
	if quiz.CurrentIndex > 0 {
		nav = append(nav, tgmodels.InlineKeyboardButton{Text: "⬅️ Назад", CallbackData: "prev_question"})
	}
	if quiz.CurrentIndex < last {
		nav = append(nav, tgmodels.InlineKeyboardButton{Text: "➡️ Далее", CallbackData: "next_question"})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	if quiz.CurrentIndex == last {
		rows = append(rows, []tgmodels.InlineKeyboardButton{
			{Text: "Завершить", CallbackData: "finish_test"},
		})
	}

	if answer := quiz.Answers[quiz.CurrentIndex]; answer != 0 {
		rows = append(rows, []tgmodels.InlineKeyboardButton{
			{Text: "Ваш ответ: " + answerLabel(q, answer), CallbackData: "show_answer"},
		})
	}

	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func finishKeyboard() *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{{Text: "К темам", CallbackData: "back_to_topics"}},
		},
	}
}

func backRow() []tgmodels.InlineKeyboardButton {
	return []tgmodels.InlineKeyboardButton{{Text: "Назад", CallbackData: "back_previous"}}
}
