package swaggerkit

import (
	"encoding/json"
	"net/http"
)

// SpecMutator adjusts the parsed doc before it is served
type SpecMutator func(map[string]any)

var mutators []SpecMutator

// Register adds a mutator, call it from init
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}

// serveDocJSON renders the doc, adds the servers block and the shared error responses
func serveDocJSON(serverURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(docReader()), &doc); err != nil {
			http.Error(w, "doc parse error", http.StatusInternalServerError)
			return
		}
		if _, ok := doc["servers"]; !ok {
			doc["servers"] = []any{map[string]any{"url": serverURL}}
		}
		addErrorSchema(doc)
		addErrorResponses(doc)
		for _, m := range mutators {
			m(doc)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(doc)
	}
}

func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

// addErrorSchema mirrors the runtime error envelope
func addErrorSchema(doc map[string]any) {
	schemas := child(child(doc, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	schemas["ErrorResponse"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer"},
			"error":       map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
}

var errorResponses = map[string]string{
	"400": "Bad Request",
	"404": "Not Found",
	"500": "Internal Server Error",
}

// addErrorResponses gives every operation the envelope for the codes any handler can return
func addErrorResponses(doc map[string]any) {
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return
	}
	for _, p := range paths {
		item, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range item {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			resps := child(op, "responses")
			for code, desc := range errorResponses {
				if _, exists := resps[code]; exists {
					continue
				}
				resps[code] = map[string]any{
					"description": desc,
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
						},
					},
				}
			}
		}
	}
}
