// Package loanterms extracts loan amount, interest rate, EMI and tenure from
// cleaned OCR text. Each field is resolved by an ordered cascade of pattern
// tiers; the first tier that matches fixes the value and later tiers can only
// corroborate it.
package loanterms

import (
	"fmt"
	"math"
	"strings"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/utils/ocrclean"
)

// Tier is one detection strategy in a field cascade.
type Tier struct {
	Name string
	// Weight is added to the field confidence when this tier sets the value.
	Weight float64
	// Corroboration is added when the tier finds exactly the value already
	// set. Zero means the tier never corroborates.
	Corroboration float64
	// OnlyIfUnset skips the tier once an earlier tier has set the value.
	OnlyIfUnset bool
	Find        func(doc ocrclean.Document) (float64, bool)
	FoundNote   string
	ConfirmNote string
}

// Cascade resolves one field from its tiers.
type Cascade struct {
	Field dto.FieldName
	Label string
	Tiers []Tier
}

// Outcome is the reduced state of one cascade.
type Outcome struct {
	Field      dto.FieldName
	Value      float64
	Found      bool
	Confidence float64
	// Increments lists every confidence delta in the order it was applied.
	Increments []float64
	Notes      []string
}

// Run folds the tiers over the document. The value is never overwritten once
// set and the confidence stays within [0, 1] after every step.
func (c Cascade) Run(doc ocrclean.Document) Outcome {
	out := Outcome{Field: c.Field}

	for _, tier := range c.Tiers {
		if tier.OnlyIfUnset && out.Found {
			continue
		}
		v, ok := tier.Find(doc)
		if !ok || !finite(v) {
			continue
		}

		switch {
		case !out.Found:
			out.Value, out.Found = v, true
			out.add(tier.Weight)
			out.Notes = append(out.Notes, tier.FoundNote)
		case tier.Corroboration > 0 && v == out.Value:
			out.add(tier.Corroboration)
			out.Notes = append(out.Notes, tier.ConfirmNote)
		}
	}

	if !out.Found {
		out.Confidence = 0
		out.Notes = append(out.Notes, capitalize(c.Label)+" not confidently detected")
		return out
	}
	out.Notes = append(out.Notes, fmt.Sprintf("Final %s confidence score: %.2f", c.Label, out.Confidence))
	return out
}

func (o *Outcome) add(delta float64) {
	o.Increments = append(o.Increments, delta)
	o.Confidence = clamp(o.Confidence + delta)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
