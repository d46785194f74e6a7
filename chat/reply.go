// reply.go decodes model replies. Models are told to answer with bare
// JSON, but in practice wrap it in markdown fences or narrative, so the
// decoder first extracts the JSON object and only then validates it
// strictly.
package chat

import (
	"encoding/json"
	"strings"
)

// decodeGeneration parses the conversion reply. Exactly one of the
// outcomes holds: a non-empty sqlText, a non-empty refusal (the model's
// own error text), or a non-nil *Error.
func decodeGeneration(raw string) (sqlText string, refusal string, failure *Error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return "", "", newError(KindMalformedModelResponse, "model reply contained no JSON object", nil)
	}

	var reply struct {
		SQL   *string `json:"sql"`
		Error string  `json:"error"`
	}
	dec := json.NewDecoder(strings.NewReader(jsonStr))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&reply); err != nil {
		return "", "", newError(KindMalformedModelResponse, "model reply did not match the expected {sql, error} object", err)
	}

	if reply.Error != "" {
		return "", reply.Error, nil
	}

	if reply.SQL == nil {
		return "", "", newError(KindEmptyGeneration, "model produced neither SQL nor an error", nil)
	}
	generated := strings.TrimSpace(*reply.SQL)
	// Some models emit the string "null" instead of a JSON null.
	if generated == "" || strings.EqualFold(generated, "null") {
		return "", "", newError(KindEmptyGeneration, "model produced neither SQL nor an error", nil)
	}

	return generated, "", nil
}

// decodeSummary parses the summary reply. A reply that is not the
// expected JSON degrades to the raw text instead of failing: a readable
// answer beats a hard error at the last step.
func decodeSummary(raw string) string {
	jsonStr := extractJSON(raw)
	if jsonStr != "" {
		var reply struct {
			Summary string `json:"summary"`
		}
		if err := json.Unmarshal([]byte(jsonStr), &reply); err == nil && reply.Summary != "" {
			return reply.Summary
		}
	}
	return strings.TrimSpace(raw)
}

// extractJSON finds the first {...} JSON object in the text,
// handling markdown code fences and surrounding narrative.
func extractJSON(text string) string {
	// Try to extract from markdown code fence
	if idx := strings.Index(text, "```json"); idx >= 0 {
		start := idx + len("```json")
		end := strings.Index(text[start:], "```")
		if end >= 0 {
			return strings.TrimSpace(text[start : start+end])
		}
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		start := idx + len("```")
		end := strings.Index(text[start:], "```")
		if end >= 0 {
			candidate := strings.TrimSpace(text[start : start+end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	// Try to find raw JSON object by matching braces
	depth := 0
	start := -1
	for i, ch := range text {
		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 && start >= 0 {
				return text[start : i+1]
			}
		}
	}

	return ""
}
