package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/qbank-io/exam-ingest/internal/common"
	"github.com/qbank-io/exam-ingest/internal/records"
)

// Sanitizer recovers draft records from the capability's possibly noisy text
// output. Cleanup passes are an ordered list of pure parsing strategies tried
// in sequence; the first one that yields a JSON array wins.
type Sanitizer struct {
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewSanitizer(logger *slog.Logger) (*Sanitizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := CompileSchema(BuildDraftSchema())
	if err != nil {
		return nil, err
	}
	return &Sanitizer{schema: schema, logger: logger}, nil
}

type parseStrategy struct {
	name string
	fn   func(string) ([]map[string]any, error)
}

// Recover extracts the draft records embedded in raw. Records that fail the
// minimal shape check (no usable number) are dropped with a logged reason;
// only total recovery failure is an error.
func (s *Sanitizer) Recover(kind records.Kind, raw string) ([]records.Draft, error) {
	candidate := extractFenced(raw)

	strategies := []parseStrategy{
		{"direct", parseDirect},
		{"comment-strip", parseCommentStripped},
		{"json-repair", parseRepaired},
		{"hjson", parseHJSON},
	}

	var items []map[string]any
	var lastErr error
	for _, strategy := range strategies {
		parsed, err := strategy.fn(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		s.logger.Debug("response recovered", "strategy", strategy.name, "records", len(parsed))
		items = parsed
		break
	}
	if items == nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedResponse, lastErr)
	}

	drafts := make([]records.Draft, 0, len(items))
	for i, item := range items {
		if err := s.schema.Validate(any(item)); err != nil {
			s.logger.Warn("record shape invalid, dropped", "index", i, "error", err)
			continue
		}
		draft, ok := records.DraftFromMap(kind, item)
		if !ok {
			s.logger.Warn("record without number, dropped", "index", i)
			continue
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// extractFenced pulls the first fenced code block tagged as JSON; failing
// that, any fenced block that starts with a bracket; failing that, the raw
// text. Trailing prose outside the fence is ignored by construction.
func extractFenced(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx != -1 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if strings.Contains(text, "```") {
		for _, part := range strings.Split(text, "```") {
			trimmed := strings.TrimSpace(part)
			if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
				return trimmed
			}
		}
	}
	return text
}

func parseDirect(text string) ([]map[string]any, error) {
	return decodeRecordArray(text)
}

func parseCommentStripped(text string) ([]map[string]any, error) {
	return decodeRecordArray(largestBalanced(stripComments(text)))
}

func parseRepaired(text string) ([]map[string]any, error) {
	repaired, err := jsonrepair.RepairJSON(text)
	if err != nil {
		return nil, fmt.Errorf("json repair: %w", err)
	}
	return decodeRecordArray(repaired)
}

func parseHJSON(text string) ([]map[string]any, error) {
	var v any
	if err := hjson.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("hjson: %w", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeRecordArray(string(b))
}

// decodeRecordArray accepts either a bare JSON array or the wrapped
// {"type": ..., "data": [...]} shape some responses use.
func decodeRecordArray(text string) ([]map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case []any:
		return toRecordMaps(t)
	case map[string]any:
		if data, ok := t["data"].([]any); ok {
			return toRecordMaps(data)
		}
		// a single bare record is tolerated
		return []map[string]any{t}, nil
	default:
		return nil, fmt.Errorf("not a JSON array")
	}
}

func toRecordMaps(items []any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	if len(out) == 0 && len(items) > 0 {
		return nil, fmt.Errorf("array holds no record objects")
	}
	return out, nil
}

// stripComments removes // line comments and /* */ block comments while
// preserving comment-looking sequences inside JSON strings.
func stripComments(text string) string {
	var b strings.Builder
	inString := false
	escaped := false
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if escaped {
			b.WriteRune(ch)
			escaped = false
			continue
		}
		if inString {
			if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			b.WriteRune(ch)
			continue
		}
		switch {
		case ch == '"':
			inString = true
			b.WriteRune(ch)
		case ch == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			if i < len(runes) {
				b.WriteRune('\n')
			}
		case ch == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i++ // skip the trailing '/'
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// largestBalanced returns the bracket-balanced substring starting at the
// first opening bracket. When the text is truncated mid-array it falls back
// to cutting at the last closing bracket.
func largestBalanced(text string) string {
	start := strings.IndexAny(text, "[{")
	if start == -1 {
		return text
	}
	open := rune(text[start])
	var closing rune
	if open == '[' {
		closing = ']'
	} else {
		closing = '}'
	}

	depth := 0
	inString := false
	escaped := false
	for i, ch := range text[start:] {
		if escaped {
			escaped = false
			continue
		}
		if inString {
			if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[start : start+i+1]
			}
		}
	}

	if last := strings.LastIndexByte(text, byte(closing)); last > start {
		return text[start : last+1]
	}
	return text[start:]
}
