package loanterms

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/utils/ocrclean"
)

const number = `([0-9]+(?:\.[0-9]+)?)`

var (
	loanPhraseRe  = regexp.MustCompile(`(?i)\b(?:loan\s*amount|amount\s*of\s*loan)\b[^0-9]*` + number)
	rupeeRe       = regexp.MustCompile(`(?i)\b(?:rs|inr)\s*` + number)
	loanSectionRe = regexp.MustCompile(`(?i)(?:loan|sanction|finance|amount)[\s\S]*?\brs\s*` + number)

	ratePhraseRe  = regexp.MustCompile(`(?i)\b(?:interest\s*rate|rate\s*of\s*interest|roi)\b[^0-9%]*` + number + `\s*%?`)
	percentRe     = regexp.MustCompile(number + `\s*%`)
	rateSectionRe = regexp.MustCompile(`(?i)(?:interest|roi|rate)[\s\S]*?` + number + `\s*%`)

	emiPhraseRe   = regexp.MustCompile(`(?i)\b(?:emi|monthly\s*installment|installment\s*amount)\b[^0-9]*` + number)
	emiCurrencyRe = regexp.MustCompile(`(?i)(?:\b(?:rs|inr)|₹)\s*` + number)
	emiSectionRe  = regexp.MustCompile(`(?i)(?:emi|installment|repayment|monthly)[\s\S]*?(?:\b(?:rs|inr)|₹)\s*` + number)

	tenurePhraseRe = regexp.MustCompile(`(?i)\b(?:tenure|loan\s*duration|repayment\s*term|lease\s*period)\b[^0-9]*([0-9]+)\s*(years?|months?)`)
	durationRe     = regexp.MustCompile(`(?i)\b([0-9]+)\s*(years?|months?)\b`)
	nearDurationRe = regexp.MustCompile(`(?i)([0-9]+)\s*(years?|months?)`)
)

var tenureKeywords = []string{"tenure", "repayment period", "loan duration", "emi period", "installment period"}

// proximityWindow is how many lines before and after a tenure keyword line
// are searched for a duration.
const proximityWindow = 3

var loanAmountCascade = Cascade{
	Field: dto.FieldLoanAmount,
	Label: "loan amount",
	Tiers: []Tier{
		{
			Name:      "primary",
			Weight:    0.35,
			Find:      inText(loanPhraseRe, parseNumber),
			FoundNote: "Loan amount detected using primary phrase pattern",
		},
		{
			Name:          "currency",
			Weight:        0.30,
			Corroboration: 0.10,
			Find:          inText(rupeeRe, parseNumber),
			FoundNote:     "Loan amount detected using currency-linked fallback pattern",
			ConfirmNote:   "Currency-linked pattern confirms loan amount value",
		},
		{
			Name:        "section",
			Weight:      0.20,
			OnlyIfUnset: true,
			Find:        inSections(loanSectionRe),
			FoundNote:   "Loan amount detected using section-scoped fallback",
		},
	},
}

var interestRateCascade = Cascade{
	Field: dto.FieldInterestRate,
	Label: "interest rate",
	Tiers: []Tier{
		{
			Name:      "primary",
			Weight:    0.30,
			Find:      inText(ratePhraseRe, parseNumber),
			FoundNote: "Interest rate detected using primary phrase pattern",
		},
		{
			Name:          "percent",
			Weight:        0.25,
			Corroboration: 0.10,
			Find:          inText(percentRe, parseNumber),
			FoundNote:     "Interest rate detected using percent fallback pattern",
			ConfirmNote:   "Percent pattern confirms interest rate value",
		},
		{
			Name:        "section",
			Weight:      0.20,
			OnlyIfUnset: true,
			Find:        inSections(rateSectionRe),
			FoundNote:   "Interest rate detected using section-scoped fallback",
		},
	},
}

var emiCascade = Cascade{
	Field: dto.FieldEMI,
	Label: "EMI",
	Tiers: []Tier{
		{
			Name:      "primary",
			Weight:    0.25,
			Find:      inText(emiPhraseRe, parseNumber),
			FoundNote: "EMI detected using primary phrase pattern",
		},
		{
			Name:          "currency",
			Weight:        0.20,
			Corroboration: 0.10,
			Find:          inText(emiCurrencyRe, parseNumber),
			FoundNote:     "EMI detected using currency-linked fallback pattern",
			ConfirmNote:   "Currency-linked pattern confirms EMI value",
		},
		{
			Name:        "section",
			Weight:      0.15,
			OnlyIfUnset: true,
			Find:        inSections(emiSectionRe),
			FoundNote:   "EMI detected using section-scoped fallback",
		},
	},
}

var tenureCascade = Cascade{
	Field: dto.FieldTenureMonths,
	Label: "tenure",
	Tiers: []Tier{
		{
			Name:      "primary",
			Weight:    0.25,
			Find:      inText(tenurePhraseRe, parseMonths),
			FoundNote: "Tenure detected using primary phrase pattern",
		},
		{
			Name:          "duration",
			Weight:        0.20,
			Corroboration: 0.10,
			Find:          inText(durationRe, parseMonths),
			FoundNote:     "Tenure detected using duration-context fallback pattern",
			ConfirmNote:   "Duration-context pattern confirms tenure value",
		},
		{
			Name:        "proximity",
			Weight:      0.18,
			OnlyIfUnset: true,
			Find:        nearTenureKeyword,
			FoundNote:   "Tenure inferred from nearby line context",
		},
	},
}

// cascades run in this order; notes and the shared score depend on it.
var cascades = []Cascade{loanAmountCascade, interestRateCascade, emiCascade, tenureCascade}

// inText returns the first match of re in the flat text. Only the first
// match is considered, even when its number fails to parse.
func inText(re *regexp.Regexp, parse func([]string) (float64, bool)) func(ocrclean.Document) (float64, bool) {
	return func(doc ocrclean.Document) (float64, bool) {
		m := re.FindStringSubmatch(doc.Text)
		if m == nil {
			return 0, false
		}
		return parse(m)
	}
}

// inSections returns the first parseable match of re inside a single
// section span.
func inSections(re *regexp.Regexp) func(ocrclean.Document) (float64, bool) {
	return func(doc ocrclean.Document) (float64, bool) {
		for _, section := range doc.Sections() {
			m := re.FindStringSubmatch(section.Text())
			if m == nil {
				continue
			}
			if v, ok := parseNumber(m); ok {
				return v, true
			}
		}
		return 0, false
	}
}

// nearTenureKeyword looks for a duration within proximityWindow lines of any
// line that mentions a tenure keyword.
func nearTenureKeyword(doc ocrclean.Document) (float64, bool) {
	lines := doc.LineTexts()
	for i, line := range lines {
		if !containsAny(strings.ToLower(line), tenureKeywords) {
			continue
		}
		lo := max(0, i-proximityWindow)
		hi := min(len(lines), i+proximityWindow+1)
		m := nearDurationRe.FindStringSubmatch(strings.Join(lines[lo:hi], " "))
		if m == nil {
			continue
		}
		if v, ok := parseMonths(m); ok {
			return v, true
		}
	}
	return 0, false
}

func parseNumber(m []string) (float64, bool) {
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

// parseMonths converts an integer and a year/month unit into whole months.
func parseMonths(m []string) (float64, bool) {
	n, err := strconv.Atoi(m[1])
	if err != nil || n > math.MaxInt32 {
		return 0, false
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "year") {
		n *= 12
	}
	return float64(n), true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
