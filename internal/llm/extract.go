package llm

import "strings"

// Providers return the answer in several envelope shapes: a direct text
// field, tool-call arguments, a list of content segments, or messages nested
// under a response object. Each shape gets its own extractor; extractors are
// tried in priority order and the first hit wins.

type textExtractor func(envelope map[string]any) (string, bool)

var responseExtractors = []textExtractor{
	extractDirectText,
	extractToolCallArguments,
	extractContentSegments,
	extractNestedMessages,
}

// ExtractResponseText pulls the raw answer text out of a provider response
// envelope, whatever shape it arrived in.
func ExtractResponseText(envelope map[string]any) (string, bool) {
	for _, extract := range responseExtractors {
		if text, ok := extract(envelope); ok {
			return text, true
		}
	}
	return "", false
}

// extractDirectText handles a top-level text field, a completion-style
// choices[].text, or a chat-style choices[].message.content string.
func extractDirectText(envelope map[string]any) (string, bool) {
	if text := nonEmptyString(envelope["text"]); text != "" {
		return text, true
	}
	for _, choice := range listField(envelope, "choices") {
		if text := nonEmptyString(choice["text"]); text != "" {
			return text, true
		}
		if msg, ok := choice["message"].(map[string]any); ok {
			if text := nonEmptyString(msg["content"]); text != "" {
				return text, true
			}
		}
	}
	return "", false
}

// extractToolCallArguments handles function/tool calling responses where the
// payload travels in the call arguments rather than the message content.
func extractToolCallArguments(envelope map[string]any) (string, bool) {
	for _, choice := range listField(envelope, "choices") {
		msg, ok := choice["message"].(map[string]any)
		if !ok {
			continue
		}
		for _, call := range listField(msg, "tool_calls") {
			fn, ok := call["function"].(map[string]any)
			if !ok {
				continue
			}
			if args := nonEmptyString(fn["arguments"]); args != "" {
				return args, true
			}
		}
		// Legacy single function_call shape.
		if fc, ok := msg["function_call"].(map[string]any); ok {
			if args := nonEmptyString(fc["arguments"]); args != "" {
				return args, true
			}
		}
	}
	return "", false
}

// extractContentSegments handles content delivered as a list of typed
// segments; text segments are concatenated in order.
func extractContentSegments(envelope map[string]any) (string, bool) {
	for _, choice := range listField(envelope, "choices") {
		msg, ok := choice["message"].(map[string]any)
		if !ok {
			continue
		}
		if text, ok := joinSegments(msg["content"]); ok {
			return text, true
		}
	}
	if text, ok := joinSegments(envelope["content"]); ok {
		return text, true
	}
	return "", false
}

// extractNestedMessages handles envelopes that wrap the conversation under a
// response object; the last message with text wins.
func extractNestedMessages(envelope map[string]any) (string, bool) {
	resp, ok := envelope["response"].(map[string]any)
	if !ok {
		return "", false
	}
	messages := listField(resp, "messages")
	for i := len(messages) - 1; i >= 0; i-- {
		if text := nonEmptyString(messages[i]["content"]); text != "" {
			return text, true
		}
		if text, ok := joinSegments(messages[i]["content"]); ok {
			return text, true
		}
	}
	return "", false
}

func joinSegments(v any) (string, bool) {
	segments, ok := v.([]any)
	if !ok {
		return "", false
	}
	var b strings.Builder
	for _, seg := range segments {
		m, ok := seg.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := m["type"].(string); ok && t != "text" {
			continue
		}
		b.WriteString(nonEmptyString(m["text"]))
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", false
	}
	return b.String(), true
}

func listField(m map[string]any, key string) []map[string]any {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func nonEmptyString(v any) string {
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
