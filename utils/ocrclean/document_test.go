package ocrclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sanctionLetter = `SANCTION LETTER
Loan Amount: Rs. 5,00,000/-
Rate of Interest : 9.5% p.a.

REPAYMENT DETAILS
Tenure 3 years
`

func TestSegment(t *testing.T) {
	lines := Segment(sanctionLetter)

	require.Len(t, lines, 5)
	assert.Equal(t, Line{Text: "SANCTION LETTER", Header: true}, lines[0])
	assert.Equal(t, Line{Text: "loan amount: Rs 500000"}, lines[1])
	assert.Equal(t, Line{Text: "rate of interest : 9.5% p.a."}, lines[2])
	assert.Equal(t, Line{Text: "REPAYMENT DETAILS", Header: true}, lines[3])
	assert.Equal(t, Line{Text: "tenure 3 years"}, lines[4])
}

func TestSegmentJoinsHyphenatedLines(t *testing.T) {
	lines := Segment("Monthly instal-\nment due\n\n\n")

	require.Len(t, lines, 1)
	assert.Equal(t, "monthly installment due", lines[0].Text)
}

func TestSegmentEmpty(t *testing.T) {
	assert.Empty(t, Segment(""))
	assert.Empty(t, Segment("\n \n\t"))
}

func TestIsHeading(t *testing.T) {
	assert.True(t, IsHeading("LOAN DETAILS"))
	assert.True(t, IsHeading("Schedule of Charges (2024)"))
	assert.False(t, IsHeading("loan details"))
	assert.False(t, IsHeading("AB"))
	assert.False(t, IsHeading("EMI: 5000"))
}

func TestSections(t *testing.T) {
	doc := Normalize("preamble line\n" + sanctionLetter)

	sections := doc.Sections()

	require.Len(t, sections, 2)
	assert.Equal(t, "SANCTION LETTER", sections[0].Heading)
	assert.Equal(t, []string{"loan amount: Rs 500000", "rate of interest : 9.5% p.a."}, sections[0].Body)
	assert.Equal(t, "REPAYMENT DETAILS tenure 3 years", sections[1].Text())
}

func TestNormalizeKeepsFlatText(t *testing.T) {
	doc := Normalize(sanctionLetter)

	assert.Equal(t, Clean(sanctionLetter), doc.Text)
	assert.Len(t, doc.Lines, 5)
	assert.False(t, doc.Empty())
	assert.True(t, Normalize("   ").Empty())
}

func TestParse(t *testing.T) {
	doc := Parse("LOAN SUMMARY\nloan amount Rs 100\n")

	assert.Equal(t, "LOAN SUMMARY\nloan amount Rs 100\n", doc.Text)
	assert.Equal(t, []string{"LOAN SUMMARY", "loan amount Rs 100"}, doc.LineTexts())
	assert.True(t, doc.Lines[0].Header)
}
