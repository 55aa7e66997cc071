// Package report renders extraction records for people rather than programs.
package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/Aashish23092/loan-ocr-extraction/dto"

	"github.com/nao1215/markdown"
)

var fieldLabels = map[dto.FieldName]string{
	dto.FieldLoanAmount:   "Loan Amount",
	dto.FieldInterestRate: "Interest Rate (%)",
	dto.FieldEMI:          "EMI",
	dto.FieldTenureMonths: "Tenure (Months)",
}

// WriteMarkdown writes one extraction record as a Markdown document.
func WriteMarkdown(w io.Writer, rec dto.LoanExtractionRecord) error {
	md := markdown.NewMarkdown(w)

	md.H1("Loan Extraction Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"File", "`" + rec.FileName + "`"},
			{"Uploaded At", rec.UploadedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages", strconv.Itoa(rec.Pages)},
			{"OCR Engine", orDash(rec.OCREngine)},
			{"Confidence", formatFloat(rec.Confidence)},
			{"Confidence Mode", orDash(rec.ConfidenceMode)},
		},
	})
	md.PlainText("")

	writeFields(md, rec)
	writeNotes(md, rec)

	return md.Build()
}

func writeFields(md *markdown.Markdown, rec dto.LoanExtractionRecord) {
	md.H2("Loan Terms")
	md.PlainText("")

	rows := make([][]string, 0, len(dto.FieldNames))
	for _, name := range dto.FieldNames {
		value := "-"
		if v, ok := rec.Fields[name]; ok {
			value = formatFloat(v)
		}
		confidence := "-"
		if c, ok := rec.FieldConfidence[name]; ok {
			confidence = formatFloat(c)
		}
		rows = append(rows, []string{fieldLabels[name], value, confidence})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value", "Confidence"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(rec.Fields) == 0 {
		md.Cautionf("No loan terms were detected in %s.", rec.FileName)
		md.PlainText("")
	}
}

func writeNotes(md *markdown.Markdown, rec dto.LoanExtractionRecord) {
	if len(rec.Warnings) > 0 {
		md.Importantf("OCR reported %d warning(s): %s", len(rec.Warnings), strings.Join(rec.Warnings, "; "))
		md.PlainText("")
	}

	md.H2("Notes")
	md.PlainText("")
	if len(rec.Notes) == 0 {
		md.Note("No extraction notes.")
	} else {
		md.BulletList(rec.Notes...)
	}
	md.PlainText("")

	if len(rec.QRPayloads) > 0 {
		md.H2("QR Codes")
		md.PlainText("")
		for i, payload := range rec.QRPayloads {
			md.Details("QR code "+strconv.Itoa(i+1), payload)
		}
		md.PlainText("")
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
