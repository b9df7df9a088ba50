package mock

import "strings"

const (
	// AnswerPrefix is prepended to every echoed answer.
	AnswerPrefix = "Echo: "
	// FallbackText stands in for the user text when the history has no user turn.
	FallbackText = "No user message found"
	// ResponseTitle is the fixed title label on every response.
	ResponseTitle = "Mocked Response"

	roleUser = "user"
)

// ResponsePills is the fixed tag list attached to every response.
var ResponsePills = []string{"Mock", "Echo"}

// PlaceholderSource is attached to the terminal chunk of a stream.
func PlaceholderSource() Source {
	date := "2023-01-01"
	return Source{
		Title:           "Mock Source",
		URL:             "https://example.com",
		PublicationDate: &date,
	}
}

// ResolveUserText returns the content of the last message whose role is
// "user", or FallbackText when there is none.
func ResolveUserText(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == roleUser {
			return messages[i].Content
		}
	}
	return FallbackText
}

// Generate builds the whole-response answer for req. It never fails.
func Generate(req ChatCompletionRequest) ChatCompletionResponse {
	return answerFor(ResolveUserText(req.Messages), nil)
}

// Words splits text on whitespace, keeping order.
func Words(text string) []string {
	return strings.Fields(text)
}

// fragment is the partial text for word i of a stream. Only the first word
// carries the prefix; the rest are space-led continuations.
func fragment(i int, word string) string {
	if i == 0 {
		return AnswerPrefix + word
	}
	return " " + word
}

func answerFor(text string, sources []Source) ChatCompletionResponse {
	title := ResponseTitle
	pills := make([]string, len(ResponsePills))
	copy(pills, ResponsePills)
	return ChatCompletionResponse{
		Answer:  AnswerPrefix + text,
		Title:   &title,
		Pills:   pills,
		Sources: sources,
	}
}
