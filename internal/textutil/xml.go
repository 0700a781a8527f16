package textutil

import (
	"strings"
	"unicode"
)

var knownEntities = []string{"&amp;", "&lt;", "&gt;", "&quot;", "&apos;"}

// XMLEscape escapes & < > " and ' for use in XML text or attribute values.
// An ampersand that already starts one of the five predefined entities is
// left alone, so values exported with escaping applied are not escaped twice.
func XMLEscape(value string) string {
	if !strings.ContainsAny(value, `&<>"'`) {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 16)
	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case '&':
			if startsWithEntity(value[i:]) {
				b.WriteByte('&')
			} else {
				b.WriteString("&amp;")
			}
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func startsWithEntity(s string) bool {
	for _, entity := range knownEntities {
		if strings.HasPrefix(s, entity) {
			return true
		}
	}
	return false
}

// XMLTagName strips every character that is not a letter or digit from label.
// "Title (Free Text Part)" becomes "TitleFreeTextPart".
func XMLTagName(label string) string {
	var b strings.Builder
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
