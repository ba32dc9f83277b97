package label

import (
	"strings"

	"wikimaping/internal/model"
)

// tagKind identifies one recognized placeholder token.
type tagKind int

const (
	tagYear tagKind = iota
	tagMonth
	tagMonthLower
	tagMonthUpper
	tagMonthTitle
	tagDay
	tagHour
	tagMinute
	tagSecond
	tagFileName
)

// tokens lists the recognized tag tokens, longest first so that a longer
// token is never shadowed by a shorter one starting at the same position.
var tokens = []struct {
	text string
	kind tagKind
}{
	{"file_name", tagFileName},
	{"MONTH", tagMonthUpper},
	{"Month", tagMonthTitle},
	{"month", tagMonthLower},
	{"YYYY", tagYear},
	{"MM", tagMonth},
	{"DD", tagDay},
	{"hh", tagHour},
	{"mm", tagMinute},
	{"ss", tagSecond},
}

// span is one parsed piece of a template: either literal text or a tag.
//
// Spans that came from the same bracket group carry groupStart/groupEnd
// marks so rendering can suppress the whole group when a tag inside it
// resolves to nothing.
type span struct {
	text       string
	tag        tagKind
	isTag      bool
	groupStart bool
	groupEnd   bool
}

// Template is a parsed label template, ready to be rendered against the
// metadata of each photo in a batch.
type Template struct {
	source string
	spans  []span
}

// Parse parses a label template into a Template.
//
// A template mixes literal text with bracket groups. Inside a group any
// number of recognized tag tokens can appear, mixed with literal text.
// Doubled brackets escape: "[[" and "]]" yield literal bracket characters
// and never open or close a group. A group whose content contains no
// recognized token is kept verbatim, brackets included. Parsing never
// fails; anything unrecognized degrades to literal text.
func Parse(template string) *Template {
	t := &Template{source: template}

	var text strings.Builder
	depth := 0
	groupStart := 0

	flush := func() {
		if text.Len() > 0 {
			t.spans = append(t.spans, span{text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(template); {
		if depth == 0 {
			if strings.HasPrefix(template[i:], "[[") || strings.HasPrefix(template[i:], "]]") {
				text.WriteByte(template[i])
				i += 2
				continue
			}
		}

		switch template[i] {
		case '[':
			depth++
			if depth == 1 {
				groupStart = i + 1
			}
			i++
		case ']':
			if depth > 0 {
				depth--
				if depth == 0 {
					flush()
					t.parseGroup(template[groupStart:i])
				}
				i++
				continue
			}
			text.WriteByte(']')
			i++
		default:
			if depth == 0 {
				text.WriteByte(template[i])
			}
			i++
		}
	}

	// Unterminated group: keep it as literal text from its opening bracket.
	if depth > 0 {
		text.WriteString(template[groupStart-1:])
	}
	flush()

	return t
}

// parseGroup splits the content of one bracket group into tag and literal
// spans. A group with no recognized token becomes a single literal span
// with its brackets restored.
func (t *Template) parseGroup(content string) {
	var spans []span
	var text strings.Builder
	hasTag := false

	flush := func() {
		if text.Len() > 0 {
			spans = append(spans, span{text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(content); {
		if tok, kind, ok := matchToken(content[i:]); ok {
			flush()
			spans = append(spans, span{tag: kind, isTag: true})
			hasTag = true
			i += len(tok)
			continue
		}
		text.WriteByte(content[i])
		if strings.HasPrefix(content[i:], "[[") || strings.HasPrefix(content[i:], "]]") {
			i += 2
		} else {
			i++
		}
	}
	flush()

	if !hasTag {
		t.spans = append(t.spans, span{text: "[" + content + "]"})
		return
	}

	spans[0].groupStart = true
	spans[len(spans)-1].groupEnd = true
	t.spans = append(t.spans, spans...)
}

// matchToken reports the recognized tag token starting the string, if any.
func matchToken(s string) (string, tagKind, bool) {
	for _, tok := range tokens {
		if strings.HasPrefix(s, tok.text) {
			return tok.text, tok.kind, true
		}
	}
	return "", 0, false
}

// Render renders the template against the given photo metadata.
//
// Each bracket group renders independently. If any tag inside a group
// resolves to an empty value (a date tag without a timestamp, or file_name
// without a name), the whole group renders as empty rather than leaving a
// half-filled fragment behind. Literal runs outside groups always render
// as-is.
func (t *Template) Render(meta model.PhotoMetadata) string {
	var out strings.Builder
	var group strings.Builder
	inGroup := false
	groupEmpty := false

	for _, s := range t.spans {
		if s.groupStart {
			inGroup = true
			groupEmpty = false
			group.Reset()
		}

		value := s.text
		if s.isTag {
			value = resolveTag(s.tag, meta)
			if value == "" {
				groupEmpty = true
			}
		}

		if inGroup {
			if !groupEmpty {
				group.WriteString(value)
			}
		} else {
			out.WriteString(value)
		}

		if s.groupEnd {
			if !groupEmpty {
				out.WriteString(group.String())
			}
			inGroup = false
		}
	}

	return out.String()
}

// String returns the original template text.
func (t *Template) String() string {
	return t.source
}

// resolveTag produces the value of one tag for the given metadata.
// Date and time tags resolve to "" when no timestamp is available.
func resolveTag(kind tagKind, meta model.PhotoMetadata) string {
	if kind == tagFileName {
		return meta.FileName
	}

	if !meta.HasTime() {
		return ""
	}

	ct := meta.CaptureTime
	switch kind {
	case tagYear:
		return ct.Format("2006")
	case tagMonth:
		return ct.Format("01")
	case tagDay:
		return ct.Format("02")
	case tagHour:
		return ct.Format("15")
	case tagMinute:
		return ct.Format("04")
	case tagSecond:
		return ct.Format("05")
	case tagMonthTitle:
		return ct.Month().String()
	case tagMonthUpper:
		return strings.ToUpper(ct.Month().String())
	case tagMonthLower:
		return strings.ToLower(ct.Month().String())
	}
	return ""
}
