package llm

import "github.com/google/generative-ai-go/genai"

// SchemaToJSON renders a Gemini schema as a JSON Schema document for
// providers that take the OpenAI-style response_format.
func SchemaToJSON(s *genai.Schema) map[string]any {
	if s == nil {
		return map[string]any{}
	}

	out := map[string]any{}
	switch s.Type {
	case genai.TypeString:
		out["type"] = "string"
	case genai.TypeNumber:
		out["type"] = "number"
	case genai.TypeInteger:
		out["type"] = "integer"
	case genai.TypeBoolean:
		out["type"] = "boolean"
	case genai.TypeArray:
		out["type"] = "array"
	case genai.TypeObject:
		out["type"] = "object"
	}

	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Items != nil {
		out["items"] = SchemaToJSON(s.Items)
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = SchemaToJSON(prop)
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}
