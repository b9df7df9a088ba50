// Package openapi serves the API description of the chat completions endpoint.
package openapi

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// document is the OpenAPI 3 description, kept in sync with the types in internal/mock.
//
//go:embed openapi.yaml
var document []byte

var (
	jsonOnce sync.Once
	jsonDoc  []byte
	jsonErr  error
)

// YAML returns the document as written.
func YAML() []byte {
	return document
}

// JSON returns the document converted to JSON. The conversion runs once.
func JSON() ([]byte, error) {
	jsonOnce.Do(func() {
		var doc map[string]any
		if err := yaml.Unmarshal(document, &doc); err != nil {
			jsonErr = fmt.Errorf("parse openapi document: %w", err)
			return
		}
		jsonDoc, jsonErr = json.Marshal(doc)
		if jsonErr != nil {
			jsonErr = fmt.Errorf("encode openapi document: %w", jsonErr)
		}
	})
	return jsonDoc, jsonErr
}
