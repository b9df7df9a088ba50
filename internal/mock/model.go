package mock

// ChatMessage is a single turn in the conversation. Role is an open tag
// ("user", "assistant", "system" by convention).
type ChatMessage struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

type ChatCompletionRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model"`
	Stream   *bool         `json:"stream,omitempty"`
}

// Streaming reports whether the caller asked for SSE delivery. Absent means false.
func (r ChatCompletionRequest) Streaming() bool {
	return r.Stream != nil && *r.Stream
}

type ChatCompletionResponse struct {
	Answer  string   `json:"answer"`
	Title   *string  `json:"title"`
	Pills   []string `json:"pills"`
	Sources []Source `json:"sources"`
}

type Source struct {
	Title           string  `json:"title"`
	URL             string  `json:"url"`
	PublicationDate *string `json:"publication_date"`
}

// StreamChunk is one SSE unit. Answer carries a JSON-encoded response payload;
// on the terminal chunk (Done=true) it is the complete response.
type StreamChunk struct {
	Answer string `json:"answer"`
	Done   bool   `json:"done"`
}

// StreamHandler receives chunks in emission order. Returning an error stops the stream.
type StreamHandler func(chunk StreamChunk) error
