package openapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONDescribesChatCompletions(t *testing.T) {
	raw, err := JSON()
	require.NoError(t, err)

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
		Comps   struct {
			Schemas map[string]any `json:"schemas"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	require.Equal(t, "3.0.3", doc.OpenAPI)
	require.Contains(t, doc.Paths, "/v1/chat/completions")
	require.Contains(t, doc.Paths["/v1/chat/completions"], "post")
	for _, name := range []string{"ChatCompletionRequest", "ChatCompletionResponse", "Source", "StreamChunk", "ChatCompletionsError"} {
		require.Contains(t, doc.Comps.Schemas, name)
	}
}

func TestJSONIsStable(t *testing.T) {
	a, err := JSON()
	require.NoError(t, err)
	b, err := JSON()
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.NotEmpty(t, YAML())
}
