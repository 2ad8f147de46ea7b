package records

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/qbank-io/exam-ingest/constants"
)

// Kind discriminates question-bearing from answer-bearing draft records.
type Kind string

const (
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
)

// Draft is a candidate question or answer record recovered from one chunk,
// prior to cross-matching. Year 0 means unset. Seq is the dispatch-order
// sequence of the chunk that produced the record; it breaks capping ties
// deterministically under concurrent chunk completion.
type Draft struct {
	Kind          Kind
	Number        int
	Year          int
	Content       string
	Description   []string
	Options       map[string]string
	CorrectAnswer string
	Subject       string
	AreaName      string
	Difficulty    string
	Seq           int
}

// Matched is the union of a question draft and an answer draft sharing the
// same (year, number) key. The answer file is the authority for
// correct_answer and scoring metadata.
type Matched struct {
	QuestionNumber int               `json:"question_number"`
	Content        string            `json:"content"`
	Description    []string          `json:"description,omitempty"`
	Options        map[string]string `json:"options"`
	CorrectAnswer  string            `json:"correct_answer"`
	Subject        string            `json:"subject,omitempty"`
	AreaName       string            `json:"area_name,omitempty"`
	Difficulty     string            `json:"difficulty"`
	Year           int               `json:"year"`
	AnswerSource   string            `json:"answer_source,omitempty"`
}

// OptionsText renders the option map as prompt-friendly lines, smallest label
// first. Used to build embedding input alongside the question content.
func (m Matched) OptionsText() string {
	if len(m.Options) == 0 {
		return ""
	}
	labels := make([]string, 0, len(m.Options))
	for label := range m.Options {
		labels = append(labels, label)
	}
	sortLabels(labels)
	var b strings.Builder
	for _, label := range labels {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label)
		b.WriteString(". ")
		b.WriteString(m.Options[label])
	}
	return b.String()
}

func sortLabels(labels []string) {
	// numeric labels ("1".."5") sort numerically, anything else lexically
	for i := 1; i < len(labels); i++ {
		for j := i; j > 0 && labelLess(labels[j], labels[j-1]); j-- {
			labels[j], labels[j-1] = labels[j-1], labels[j]
		}
	}
}

func labelLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// DraftFromMap decodes one sanitized record mapping into a Draft. Records
// without a usable number are unusable for matching; ok is false for those.
// Field synonyms tolerated from the extraction capability: "number" for
// "question_number", "answer" for "correct_answer".
func DraftFromMap(kind Kind, m map[string]any) (Draft, bool) {
	d := Draft{Kind: kind}

	num, ok := intField(m, "question_number", "number")
	if !ok || num <= 0 {
		return Draft{}, false
	}
	d.Number = num

	if year, ok := intField(m, "year"); ok {
		d.Year = year
	}
	d.Content = stringField(m, "content")
	d.CorrectAnswer = stringField(m, "correct_answer", "answer")
	d.Subject = stringField(m, "subject")
	d.AreaName = stringField(m, "area_name")
	d.Difficulty = stringField(m, "difficulty")
	d.Description = stringSliceField(m, "description")
	d.Options = optionsField(m, "options")
	return d, true
}

func intField(m map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return int(t), true
		case int:
			return t, true
		case json.Number:
			if n, err := t.Int64(); err == nil {
				return int(n), true
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			// answers sometimes arrive as bare numbers
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

func stringSliceField(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	}
	return nil
}

func optionsField(m map[string]any, key string) map[string]string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for label, text := range raw {
		s, ok := text.(string)
		if !ok {
			continue
		}
		out[strings.TrimSpace(label)] = strings.TrimSpace(s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// merge combines a question draft with its matched answer draft. Answer-kind
// fields win on overlap.
func merge(q, a Draft) Matched {
	m := Matched{
		QuestionNumber: q.Number,
		Content:        q.Content,
		Description:    q.Description,
		Options:        q.Options,
		CorrectAnswer:  firstNonEmpty(a.CorrectAnswer, q.CorrectAnswer),
		Subject:        firstNonEmpty(a.Subject, q.Subject),
		AreaName:       firstNonEmpty(a.AreaName, q.AreaName),
		Year:           q.Year,
		AnswerSource:   "matched",
	}
	if a.Year != 0 {
		m.Year = a.Year
	}
	difficulty, _ := constants.CanonicalizeDifficulty(firstNonEmpty(a.Difficulty, q.Difficulty))
	m.Difficulty = string(difficulty)
	return m
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
