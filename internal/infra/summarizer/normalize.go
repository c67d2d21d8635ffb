package summarizer

import (
	"encoding/json"
	"regexp"
	"strings"

	"tube-digest/internal/utils/text"
)

// Normalization limits. The headline clamp and the fallback point budget are
// fixed; the number of points kept is configured per deployment.
const (
	headlineRuneLimit      = 60
	fallbackPointRuneLimit = 80

	// placeholderHeadline is the worst-case headline when nothing usable
	// can be extracted from a completion response.
	placeholderHeadline = "（解析失败）"
)

// parser attempts to extract a usable summary from already-defenced text.
// Each parser is pure: it returns the summary and whether it applies.
type parser func(text string, maxPoints int) (Summary, bool)

// normalizers is the ordered parser chain, composed left-to-right with early
// exit: structured JSON repair first, line-based fallback second.
var normalizers = []parser{parseStructured, parseLines}

// Normalize converts arbitrary completion-service text into a stable Summary.
// It never fails: when no tier yields usable content the result carries a
// placeholder headline and an empty point list.
func Normalize(raw string, maxPoints int) Summary {
	trimmed := stripFence(strings.TrimSpace(raw))

	for _, p := range normalizers {
		if s, ok := p(trimmed, maxPoints); ok {
			return s
		}
	}

	return Summary{
		Kind:     KindFreeform,
		Headline: placeholderHeadline,
		Points:   []string{},
		Body:     trimmed,
	}
}

// stripFence removes an enclosing code fence when the fenced block wraps at
// least 90% of the text, dropping the language tag line if present. Text
// without a dominating fence is returned unchanged.
func stripFence(s string) string {
	start := strings.Index(s, "```")
	if start == -1 {
		return s
	}
	end := strings.LastIndex(s, "```")
	if end <= start {
		return s
	}

	blockLen := end + 3 - start
	if float64(blockLen) < 0.9*float64(len(s)) {
		return s
	}

	inner := s[start+3 : end]
	// Drop a language tag such as "json" on the opening fence line.
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		tag := strings.TrimSpace(inner[:nl])
		if tag != "" && !strings.ContainsAny(tag, " \t{[") && len(tag) <= 16 {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// structuredPayload is the shape the completion service is asked to return.
// Points is raw because models sometimes answer with a single string instead
// of a list.
type structuredPayload struct {
	Headline string          `json:"headline"`
	Points   json.RawMessage `json:"points"`
}

// parseStructured slices the text to its outermost {...} span, repairs
// trailing commas, and attempts a structured parse. A points field holding a
// single string is split into discrete points.
func parseStructured(s string, maxPoints int) (Summary, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return Summary{}, false
	}

	span := trailingCommaRe.ReplaceAllString(s[start:end+1], "$1")

	var payload structuredPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return Summary{}, false
	}

	var points []string
	if len(payload.Points) > 0 {
		var list []string
		if err := json.Unmarshal(payload.Points, &list); err == nil {
			points = list
		} else {
			var single string
			if err := json.Unmarshal(payload.Points, &single); err == nil {
				points = splitInline(single)
			}
		}
	}

	headline := text.ClampRunes(strings.TrimSpace(payload.Headline), headlineRuneLimit)
	points = cleanPoints(points, maxPoints)

	if headline == "" && len(points) == 0 {
		return Summary{}, false
	}
	return Summary{Kind: KindStructured, Headline: headline, Points: points}, true
}

// splitInline splits a single string of points on newlines, ASCII and
// fullwidth semicolons, and the Chinese enumeration comma.
func splitInline(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '\n', ';', '；', '、':
			return true
		}
		return false
	})
}

// parseLines is the final content-bearing tier: the first non-empty line
// becomes the headline and subsequent non-empty lines become points, bullet
// markers stripped and each point truncated to a fixed budget.
func parseLines(s string, maxPoints int) (Summary, bool) {
	var lines []string
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.Trim(ln, " \t-•·*")
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return Summary{}, false
	}

	points := make([]string, 0, maxPoints)
	for _, ln := range lines[1:] {
		if len(points) == maxPoints {
			break
		}
		points = append(points, text.ClampRunes(ln, fallbackPointRuneLimit))
	}

	return Summary{
		Kind:     KindFreeform,
		Headline: text.ClampRunes(lines[0], headlineRuneLimit),
		Points:   points,
		Body:     s,
	}, true
}

// cleanPoints trims, drops empties, and clamps the list to maxPoints.
func cleanPoints(points []string, maxPoints int) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if len(out) == maxPoints {
			break
		}
	}
	return out
}
