package chat

import "strings"

// Intent is the classified purpose of a user utterance.
type Intent string

const (
	IntentBook         Intent = "book"
	IntentList         Intent = "list"
	IntentCancel       Intent = "cancel"
	IntentAvailability Intent = "availability"
	IntentHelp         Intent = "help"
	IntentUnknown      Intent = "unknown"
)

// intentKeywords maps each intent to the phrases that signal it. Order of
// evaluation matters: cancellation phrasing often contains "meeting", so
// cancel is checked before book and list.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentCancel, []string{"cancel", "delete", "remove", "call off"}},
	{IntentList, []string{"show", "list", "view", "my meetings", "scheduled", "upcoming", "what meetings"}},
	{IntentAvailability, []string{"availability", "available", "free slot", "open slot", "when can"}},
	{IntentBook, []string{"book", "schedule", "set up", "arrange", "new meeting", "create a meeting"}},
	{IntentHelp, []string{"help", "what can you do", "hello", "hi"}},
}

// DetectIntent classifies a free-text utterance.
func DetectIntent(input string) Intent {
	text := strings.ToLower(strings.TrimSpace(input))
	if text == "" {
		return IntentUnknown
	}

	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if matchKeyword(text, kw) {
				return entry.intent
			}
		}
	}
	return IntentUnknown
}

// matchKeyword reports whether the keyword occurs in the text. Multi-word
// phrases match as substrings. Single words match on token prefix, so
// "cancel" also catches "cancelling"; very short keywords like "hi" must
// match a whole token to avoid firing inside unrelated words.
func matchKeyword(text, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(text, kw)
	}

	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(kw) < 4 {
			if token == kw {
				return true
			}
		} else if strings.HasPrefix(token, kw) {
			return true
		}
	}
	return false
}
