package fsm

// MenuKind identifies which view is rendered in the chat's menu message.
type MenuKind string

const (
	MenuMain           MenuKind = "main"
	MenuTesting        MenuKind = "testing"
	MenuGuidelines     MenuKind = "guidelines"
	MenuGenerateTest   MenuKind = "generate_test"
	MenuGuidelinePages MenuKind = "guideline_pages"
)

// IsTopicList reports whether the menu renders the paginated topic catalog.
func (m MenuKind) IsTopicList() bool {
	return m == MenuTesting || m == MenuGuidelines || m == MenuGenerateTest
}
