// Package ocrclean normalizes raw OCR text from scanned loan and lease
// documents. Clean produces the flat CleanedText consumed by field
// extraction; Segment and Normalize additionally keep the line structure and
// flag heading-like lines so searches can be scoped to a section.
package ocrclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxCleanedLength is the hard cap, in characters, on cleaned output.
const MaxCleanedLength = 200000

var (
	hyphenBreakRe   = regexp.MustCompile(`(\pL)-[ \t]*\n[ \t]*(\pL)`)
	lineJoinRe      = regexp.MustCompile(`(\w)[ \t]*\n[ \t]*(\w)`)
	dehyphenRe      = regexp.MustCompile(`(\pL)-\s+(\pL)`)
	currencyRe      = regexp.MustCompile(`(?i)\b(?:rs|inr)\.?[\s:\-/]*`)
	digitGroupRe    = regexp.MustCompile(`(\d)[, ]+(\d)`)
	slashDashRe     = regexp.MustCompile(`(\d)/-`)
	spacedDecimalRe = regexp.MustCompile(`(\d)\s+\.(\d)`)

	// Whole-word acronyms and the currency token survive case folding.
	preservedRe = regexp.MustCompile(`\b(?:[A-Z]{2,}|Rs)\b`)
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\v", "\n", "\f", "\n")

var typographic = strings.NewReplacer(
	"\u201C", `"`, "\u201D", `"`, "\u201E", `"`, "\u201F", `"`,
	"\u2018", "'", "\u2019", "'", "\u201A", "'", "\u201B", "'",
	"\u2013", "-", "\u2014", "-",
)

// Clean turns raw OCR text into CleanedText. It never fails: empty input
// gives an empty string and over-long output is truncated at a token
// boundary. Clean is idempotent.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	text := prepare(raw)
	text = replaceUntilStable(hyphenBreakRe, text, "$1$2")
	text = replaceUntilStable(lineJoinRe, text, "$1 $2")
	text = cleanToFixedPoint(text)

	return truncate(text, MaxCleanedLength)
}

// maxCleanPasses bounds cleanToFixedPoint.
const maxCleanPasses = 4

// cleanToFixedPoint reruns cleanSegment until its output stops changing, so
// one rule exposing input for an earlier rule cannot leave work for the next
// call of Clean.
func cleanToFixedPoint(text string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := cleanSegment(text)
		if next == text {
			return next
		}
		text = next
	}
	return text
}

// prepare repairs the encoding and removes everything that is not text:
// invalid UTF-8, non-canonical compositions, control characters and
// typographic punctuation. The rupee sign becomes "Rs" before any join rule
// runs. Line breaks are kept for the line-aware rules.
func prepare(raw string) string {
	text := strings.ToValidUTF8(raw, " ")
	text = norm.NFC.String(text)
	text = lineEndings.Replace(text)
	text = strings.ReplaceAll(text, "₹", "Rs")
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, text)
	return typographic.Replace(text)
}

// cleanSegment applies the line-independent rules to one piece of text.
func cleanSegment(text string) string {
	text = collapseSpaces(text)
	if text == "" {
		return ""
	}

	text = replaceUntilStable(dehyphenRe, text, "$1$2")
	text = normalizeCurrency(text)

	// The "/-" suffix goes first: stripping it can put two digit runs side
	// by side, and those are merged like any other digit group.
	text = slashDashRe.ReplaceAllString(text, "$1")
	text = replaceUntilStable(digitGroupRe, text, "$1$2")
	text = replaceUntilStable(spacedDecimalRe, text, "$1.$2")

	text = dropRepeatedTokens(text)
	text = foldCase(text)

	return collapseSpaces(text)
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// normalizeCurrency rewrites every standalone rupee marker (INR, Rs, Rs.)
// and any trailing ":", "-" or "/" into the single token "Rs ". Markers that
// run straight into a letter are words, not currency, and are left alone.
// The rupee sign itself is already "Rs" by the time this runs.
func normalizeCurrency(text string) string {
	locs := currencyRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(locs))
	last := 0
	for _, loc := range locs {
		word := 2
		if c := text[loc[0]]; c == 'i' || c == 'I' {
			word = 3
		}
		if r, _ := utf8.DecodeRuneInString(text[loc[0]+word:]); unicode.IsLetter(r) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString("Rs ")
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// dropRepeatedTokens removes OCR word doubling ("the the", "EMI emi").
func dropRepeatedTokens(text string) string {
	tokens := strings.Fields(text)
	kept := tokens[:0:0]
	for i, tok := range tokens {
		if i > 0 && strings.EqualFold(tok, tokens[i-1]) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// foldCase lowercases text except for preserved tokens. The n-th preserved
// token is written back at the n-th preserved position.
func foldCase(text string) string {
	locs := preservedRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return strings.ToLower(text)
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range locs {
		b.WriteString(strings.ToLower(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(strings.ToLower(text[last:]))
	return b.String()
}

// replaceUntilStable reapplies a joining rule until nothing changes, so
// overlapping runs like "1,00,000" collapse completely. Every rule passed in
// shrinks its match, which bounds the loop.
func replaceUntilStable(re *regexp.Regexp, text, repl string) string {
	for {
		next := re.ReplaceAllString(text, repl)
		if next == text {
			return next
		}
		text = next
	}
}

// truncate caps text at limit characters. A token cut in half is dropped so
// the result stays a fixed point of Clean.
func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	count := 0
	for i := range text {
		if count == limit {
			head := text[:i]
			if text[i] != ' ' {
				if sp := strings.LastIndexByte(head, ' '); sp > 0 {
					head = head[:sp]
				}
			}
			return strings.TrimSpace(head)
		}
		count++
	}
	return text
}
