package ocrclean

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var headingRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9 ,.&()%/-]{2,}$`)

// Line is one cleaned line of a document.
type Line struct {
	Text   string
	Header bool
}

// Document is normalized OCR text. Text is the flat cleaned form used by the
// whole-document patterns; Lines keeps line boundaries and heading flags.
type Document struct {
	Text  string
	Lines []Line
}

// Section is a heading line followed by the body lines up to the next
// heading.
type Section struct {
	Heading string
	Body    []string
}

// Text joins the heading and body into one searchable string.
func (s Section) Text() string {
	parts := make([]string, 0, len(s.Body)+1)
	parts = append(parts, s.Heading)
	parts = append(parts, s.Body...)
	return strings.Join(parts, " ")
}

// IsHeading reports whether a cleaned line looks like a section heading:
// capitalized, at least three characters, no colon or other field
// punctuation.
func IsHeading(line string) bool {
	return headingRe.MatchString(line)
}

// Normalize cleans raw OCR text into both the flat and the line view.
func Normalize(raw string) Document {
	return Document{
		Text:  Clean(raw),
		Lines: Segment(raw),
	}
}

// Parse builds a Document from text that has already been cleaned. Callers
// that only hold CleanedText get one line per newline in it.
func Parse(cleaned string) Document {
	doc := Document{Text: cleaned}
	for _, l := range strings.Split(cleaned, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		doc.Lines = append(doc.Lines, Line{Text: l, Header: IsHeading(l)})
	}
	return doc
}

// Segment cleans raw text line by line. Hyphenated line breaks are joined
// first, blank lines are dropped and the combined length obeys
// MaxCleanedLength.
func Segment(raw string) []Line {
	if raw == "" {
		return nil
	}

	text := prepare(raw)
	text = replaceUntilStable(hyphenBreakRe, text, "$1$2")

	var lines []Line
	budget := MaxCleanedLength
	for _, rawLine := range strings.Split(text, "\n") {
		cleaned := cleanToFixedPoint(rawLine)
		if cleaned == "" {
			continue
		}
		cleaned = truncate(cleaned, budget)
		if cleaned == "" {
			break
		}
		lines = append(lines, Line{Text: cleaned, Header: IsHeading(cleaned)})

		budget -= utf8.RuneCountInString(cleaned) + 1
		if budget <= 0 {
			break
		}
	}
	return lines
}

// Empty reports whether the document carries no text at all.
func (d Document) Empty() bool {
	return strings.TrimSpace(d.Text) == "" && len(d.Lines) == 0
}

// LineTexts returns the text of every line in order.
func (d Document) LineTexts() []string {
	out := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = l.Text
	}
	return out
}

// Sections groups lines under their preceding heading. Lines before the
// first heading belong to no section.
func (d Document) Sections() []Section {
	var sections []Section
	for _, l := range d.Lines {
		if l.Header {
			sections = append(sections, Section{Heading: l.Text})
			continue
		}
		if n := len(sections); n > 0 {
			sections[n-1].Body = append(sections[n-1].Body, l.Text)
		}
	}
	return sections
}
