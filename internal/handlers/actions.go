package handlers

import (
	"strconv"
	"strings"

	"github.com/VitaliyFgiol/Bot/internal/fsm"
)

// ActionKind enumerates every inbound button press the bot understands.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionMenuTesting
	ActionMenuGuidelines
	ActionMenuGenerate
	ActionTopic
	ActionPage
	ActionBack
	ActionBackToTopics
	ActionGuidelinePrev
	ActionGuidelineNext
	ActionAnswer
	ActionPrevQuestion
	ActionNextQuestion
	ActionShowAnswer
	ActionFinishTest
)

// Action is a callback tag decoded once at the boundary. Menu is set for
// topic and page actions, Topic for topic selection, Page for page flips,
// Option for answer presses.
type Action struct {
	Kind   ActionKind
	Menu   fsm.MenuKind
	Topic  string
	Page   int
	Option int
}

var topicListMenus = []fsm.MenuKind{fsm.MenuTesting, fsm.MenuGuidelines, fsm.MenuGenerateTest}

// ParseAction decodes a raw callback data string. Anything outside the
// fixed vocabulary comes back as ActionUnknown.
func ParseAction(data string) Action {
	switch data {
	case "menu_testing":
		return Action{Kind: ActionMenuTesting}
	case "menu_guidelines":
		return Action{Kind: ActionMenuGuidelines}
	case "menu_generate_tests":
		return Action{Kind: ActionMenuGenerate}
	case "back_previous":
		return Action{Kind: ActionBack}
	case "back_to_topics":
		return Action{Kind: ActionBackToTopics}
	case "guideline_prev":
		return Action{Kind: ActionGuidelinePrev}
	case "guideline_next":
		return Action{Kind: ActionGuidelineNext}
	case "prev_question":
		return Action{Kind: ActionPrevQuestion}
	case "next_question":
		return Action{Kind: ActionNextQuestion}
	case "show_answer":
		return Action{Kind: ActionShowAnswer}
	case "finish_test":
		return Action{Kind: ActionFinishTest}
	}

	if arg, ok := strings.CutPrefix(data, "answer:"); ok {
		option, err := strconv.Atoi(arg)
		if err != nil || option < 0 {
			return Action{}
		}
		return Action{Kind: ActionAnswer, Option: option}
	}

	for _, menu := range topicListMenus {
		if topic, ok := strings.CutPrefix(data, string(menu)+"_topic:"); ok {
			if topic == "" {
				return Action{}
			}
			return Action{Kind: ActionTopic, Menu: menu, Topic: topic}
		}
		if arg, ok := strings.CutPrefix(data, string(menu)+"_page:"); ok {
			page, err := strconv.Atoi(arg)
			if err != nil || page < 1 {
				return Action{}
			}
			return Action{Kind: ActionPage, Menu: menu, Page: page}
		}
	}

	return Action{}
}
