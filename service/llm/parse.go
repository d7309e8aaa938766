package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty model response")

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// stringField matches "name": "value" with escaped quotes in value.
func stringField(name string) *regexp.Regexp {
	return regexp.MustCompile(`"` + name + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
}

var (
	overviewField  = stringField("overview")
	simpleField    = stringField("simple")
	detailedField  = stringField("detailed")
	technicalField = stringField("technical")
	categoryField  = stringField("category")
	riskLevelField = stringField("risk_level")
	typeNameField  = stringField("name")
)

const maxFallbackChars = 500

// ParseExplanation decodes a model response. It tries the whole text as
// JSON, then a fenced or embedded JSON object, then regex extraction of
// known fields. Only an empty response is an error.
func ParseExplanation(text string, mode Mode) (*Explanation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	for _, candidate := range jsonCandidates(text) {
		var e Explanation
		if err := json.Unmarshal([]byte(candidate), &e); err == nil && !e.empty() {
			e.Mode = mode
			e.normalize()
			return &e, nil
		}
	}

	e := extractFields(text)
	e.Mode = mode
	e.Partial = true
	return e, nil
}

func jsonCandidates(text string) []string {
	candidates := []string{text}
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}
	return candidates
}

func extractFields(text string) *Explanation {
	e := &Explanation{
		Overview: match(overviewField, text),
		PlainEnglish: PlainEnglish{
			Simple:    match(simpleField, text),
			Detailed:  match(detailedField, text),
			Technical: match(technicalField, text),
		},
	}
	if c := match(categoryField, text); c != "" {
		e.Classification = &Classification{Category: c}
	}
	if r := match(riskLevelField, text); r != "" {
		e.Security = &Security{RiskLevel: r}
	}
	if n := match(typeNameField, text); n != "" {
		e.TransactionType = &TransactionType{Name: n}
	}

	if e.empty() {
		// Plain prose: keep it as the overview.
		e.Overview = truncate(text, maxFallbackChars)
	}
	e.normalize()
	return e
}

func match(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if s, err := strconv.Unquote(`"` + m[1] + `"`); err == nil {
		return s
	}
	return m[1]
}

func (e *Explanation) empty() bool {
	return e.Overview == "" && e.PlainEnglish.Simple == "" && e.PlainEnglish.Detailed == "" &&
		e.PlainEnglish.Technical == "" && e.Classification == nil && e.Security == nil
}

// normalize fills the overview and the simple tier from each other.
func (e *Explanation) normalize() {
	if e.Overview == "" {
		e.Overview = e.PlainEnglish.Simple
	}
	if e.PlainEnglish.Simple == "" {
		e.PlainEnglish.Simple = e.Overview
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
