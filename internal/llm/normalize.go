package llm

import "strings"

// Near-JSON repair helpers. Models wrap payloads in function-call syntax,
// use single quotes, leave keys bare, and dangle commas. Each repair is a
// small scanner that never touches the inside of a double-quoted string, so
// already-valid JSON (including apostrophes in values) passes through
// unchanged. These are known-fragile heuristics and stay isolated here so
// tests can characterize them.

// NormalizeJSONText applies the full repair chain to a raw model answer and
// returns text that json.Unmarshal has a fighting chance with. Returns an
// empty string when no JSON-looking payload is present.
func NormalizeJSONText(raw string) string {
	cleaned := stripCodeFences(raw)
	cleaned = unwrapFunctionCall(cleaned)
	block := extractJSONBlock(cleaned)
	if block == "" {
		return ""
	}
	block = stripJSONComments(block)
	block = normalizeSingleQuotedStrings(block)
	block = quoteBareKeys(block)
	block = stripTrailingCommas(block)
	block = normalizeLeadingDecimalNumbers(block)
	return block
}

// unwrapFunctionCall strips a wrapper of the form name({...}) or
// name({...}); and returns the inner argument object. Text that does not
// match the wrapper shape is returned unchanged.
func unwrapFunctionCall(s string) string {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimSuffix(trimmed, ";")
	trimmed = strings.TrimSpace(trimmed)

	open := strings.IndexByte(trimmed, '(')
	if open <= 0 || !strings.HasSuffix(trimmed, ")") {
		return s
	}
	name := strings.TrimSpace(trimmed[:open])
	if !isIdentifier(name) {
		return s
	}
	inner := strings.TrimSpace(trimmed[open+1 : len(trimmed)-1])
	if !strings.HasPrefix(inner, "{") && !strings.HasPrefix(inner, "[") {
		return s
	}
	return inner
}

// stripCodeFences removes markdown code fences (```json ... ``` or ``` ... ```).
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	var result []string
	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}

// extractJSONBlock finds the first balanced { ... } block in the text.
func extractJSONBlock(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}

// stripJSONComments removes C-style comments outside of JSON string values.
// LLMs sometimes emit comments in JSON output despite instructions not to.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}

		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}

		if inString {
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '*' {
			i += 2
			for i+1 < len(s) {
				if s[i] == '*' && s[i+1] == '/' {
					i++
					break
				}
				i++
			}
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// normalizeSingleQuotedStrings rewrites 'value' into "value" outside of
// double-quoted strings, escaping any embedded double quotes and unescaping
// embedded \' sequences.
func normalizeSingleQuotedStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inDouble := false
	inSingle := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			if inSingle && c == '\'' {
				b.WriteByte('\'') // \' has no meaning in JSON; keep the bare quote
			} else {
				b.WriteByte('\\')
				b.WriteByte(c)
			}
			escaped = false
			continue
		}

		if c == '\\' && (inDouble || inSingle) {
			escaped = true
			continue
		}

		if c == '"' {
			if inSingle {
				b.WriteString(`\"`)
				continue
			}
			inDouble = !inDouble
			b.WriteByte(c)
			continue
		}

		if c == '\'' && !inDouble {
			inSingle = !inSingle
			b.WriteByte('"')
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// quoteBareKeys wraps unquoted object keys in double quotes. A bare
// identifier followed by a colon (outside strings) is treated as a key.
func quoteBareKeys(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}

		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}

		if inString {
			b.WriteByte(c)
			continue
		}

		if isIdentifierStart(c) {
			j := i
			for j < len(s) && isIdentifierChar(s[j]) {
				j++
			}
			word := s[i:j]
			k := j
			for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
				k++
			}
			if k < len(s) && s[k] == ':' && word != "true" && word != "false" && word != "null" {
				b.WriteByte('"')
				b.WriteString(word)
				b.WriteByte('"')
			} else {
				b.WriteString(word)
			}
			i = j - 1
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// stripTrailingCommas drops commas that directly precede a closing brace or
// bracket, outside of strings.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}

		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}

		if inString {
			b.WriteByte(c)
			continue
		}

		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue // drop the comma
			}
		}

		b.WriteByte(c)
	}

	return b.String()
}

// normalizeLeadingDecimalNumbers rewrites invalid JSON numeric literals such
// as ".8" or "-.3" into valid forms "0.8" and "-0.3" outside string values.
func normalizeLeadingDecimalNumbers(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}

		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}

		if inString {
			b.WriteByte(c)
			continue
		}

		// JSON does not allow ".5" or "-.5". Some models emit these forms.
		if c == '.' && i+1 < len(s) && isDigit(s[i+1]) && isNumericBoundary(prevNonSpace(s, i-1)) {
			b.WriteByte('0')
		}

		b.WriteByte(c)
	}

	return b.String()
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\n' && s[i] != '\r' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

func isNumericBoundary(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	if !isIdentifierStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentifierChar(s[i]) {
			return false
		}
	}
	return true
}
