// Package markup turns model replies into the two forms the assistant needs:
// an HTML fragment for the page and plain text for speech synthesis.
package markup

import (
	"regexp"
	"strings"
)

// lineChars mirrors what "." matches in a browser regex: anything but a line
// terminator.
const lineChars = `[^\n\r\x{2028}\x{2029}]`

var (
	boldPattern     = regexp.MustCompile(`\*\*(` + lineChars + `*?)\*\*`)
	listItemPattern = regexp.MustCompile(`\n\* (` + lineChars + `*)`)
	listRunPattern  = regexp.MustCompile(`(?:\n<li>[^\n]*</li>)+`)

	speechBoldPattern    = regexp.MustCompile(`\*\*`)
	speechStarPattern    = regexp.MustCompile(`\*`)
	speechHeadingPattern = regexp.MustCompile(`#+ `)
	speechElementPattern = regexp.MustCompile(`<[A-Za-z][A-Za-z0-9]*(?:\s[^<>]*[^<>/])?>[^<]*</[A-Za-z][A-Za-z0-9]*\s*>`)
	speechTagPattern     = regexp.MustCompile(`</?[^>]+(?:>|$)`)
)

// ToHTML converts the small markdown subset models tend to emit into an HTML
// fragment. Rules run in a fixed order, each on the previous output:
//
//  1. **text** becomes <strong>text</strong>
//  2. a newline followed by "* text" becomes an <li> item
//  3. each run of consecutive items is wrapped in one <ul>
//  4. a newline becomes <br/> unless the next character is "<"; the newline
//     that separates a paragraph from a following <ul> is a break as well
//
// The result is NOT sanitized. Reply text is inserted as markup, so any HTML
// the upstream model returns reaches the page verbatim.
func ToHTML(text string) string {
	formatted := boldPattern.ReplaceAllString(text, "<strong>${1}</strong>")
	formatted = replaceListItems(formatted)
	formatted = listRunPattern.ReplaceAllStringFunc(formatted, wrapListRun)
	return replaceLineBreaks(formatted)
}

// replaceListItems applies rule 2. An item runs to the next newline or the end
// of the text; an item cut short by another line terminator is left alone.
func replaceListItems(text string) string {
	matches := listItemPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(matches)*9)

	last := 0
	for _, m := range matches {
		end := m[1]
		if end != len(text) && text[end] != '\n' {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString("\n<li>")
		b.WriteString(text[m[2]:m[3]])
		b.WriteString("</li>")
		last = end
	}
	b.WriteString(text[last:])

	return b.String()
}

func wrapListRun(run string) string {
	items := strings.Split(strings.TrimPrefix(run, "\n"), "\n")
	return "\n<ul>" + strings.Join(items, "") + "</ul>"
}

func replaceLineBreaks(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\n' || i+1 == len(text) {
			b.WriteByte(c)
			continue
		}

		rest := text[i+1:]
		if rest[0] != '<' || strings.HasPrefix(rest, "<ul>") {
			b.WriteString("<br/>")
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}

// ToSpeech strips formatting so a synthesizer does not read it aloud. The
// substitutions are applied in order: bold markers, remaining asterisks,
// heading markers, then HTML (simple elements with their text first, then any
// leftover tag, including one left open at the end). Newlines are kept.
func ToSpeech(text string) string {
	text = speechBoldPattern.ReplaceAllString(text, "")
	text = speechStarPattern.ReplaceAllString(text, "")
	text = speechHeadingPattern.ReplaceAllString(text, "")
	text = speechElementPattern.ReplaceAllString(text, "")
	return speechTagPattern.ReplaceAllString(text, "")
}
