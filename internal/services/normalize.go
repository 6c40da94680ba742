package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrUnparseablePayload = errors.New("model output is not a JSON object")

// NormalizeJSON turns a model reply into a single JSON object. It tries, in
// order: the reply as-is, the reply with a markdown code fence removed, and
// the span between the first '{' and the last '}'.
func NormalizeJSON(raw []byte) (json.RawMessage, error) {
	text := strings.TrimSpace(string(raw))

	if obj, ok := asObject(text); ok {
		return obj, nil
	}

	unfenced := stripCodeFence(text)
	if obj, ok := asObject(unfenced); ok {
		return obj, nil
	}

	start := strings.Index(unfenced, "{")
	end := strings.LastIndex(unfenced, "}")
	if start >= 0 && end > start {
		if obj, ok := asObject(unfenced[start : end+1]); ok {
			return obj, nil
		}
	}

	return nil, ErrUnparseablePayload
}

func asObject(text string) (json.RawMessage, bool) {
	if !strings.HasPrefix(text, "{") || !json.Valid([]byte(text)) {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, false
	}
	return json.RawMessage(buf.Bytes()), true
}

// stripCodeFence removes a leading ``` or ```json line and the closing fence.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		lang := strings.TrimSpace(text[:idx])
		if lang == "" || (len(lang) < 20 && !strings.ContainsAny(lang, " {")) {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}
