package loanterms

import (
	"fmt"
	"strings"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/utils/ocrclean"
)

// Mode selects how per-field confidences become the overall score.
type Mode string

const (
	// ModeMean averages the four field scores, counting absent fields as 0.
	ModeMean Mode = "mean"
	// ModeMax takes the best field score.
	ModeMax Mode = "max"
	// ModeShared replays one running counter across all fields in
	// evaluation order, resetting it when no loan amount was found. It
	// reproduces scores produced by earlier versions of the extractor.
	ModeShared Mode = "shared"
)

// ParseMode validates a mode name. An empty name selects ModeMean.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(name))); m {
	case "":
		return ModeMean, nil
	case ModeMean, ModeMax, ModeShared:
		return m, nil
	default:
		return "", fmt.Errorf("unknown confidence mode %q (want mean, max or shared)", name)
	}
}

type options struct {
	mode Mode
}

// Option configures Extract.
type Option func(*options)

// WithMode sets the confidence combination mode.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// Invalid returns the result for unusable input.
func Invalid() dto.ExtractionResult {
	return dto.ExtractionResult{
		Fields:     map[dto.FieldName]float64{},
		Confidence: 0,
		Notes:      []string{dto.InvalidInputNote},
	}
}

// ExtractValue accepts an arbitrary decoded value, such as a JSON field.
// Anything other than a non-empty string yields Invalid.
func ExtractValue(v any, opts ...Option) dto.ExtractionResult {
	switch t := v.(type) {
	case string:
		return ExtractText(t, opts...)
	case *string:
		if t == nil {
			return Invalid()
		}
		return ExtractText(*t, opts...)
	default:
		return Invalid()
	}
}

// ExtractText runs extraction over text that has already been cleaned.
func ExtractText(cleaned string, opts ...Option) dto.ExtractionResult {
	return Extract(ocrclean.Parse(cleaned), opts...)
}

// Extract runs every field cascade over doc and aggregates the outcomes.
func Extract(doc ocrclean.Document, opts ...Option) dto.ExtractionResult {
	if doc.Empty() {
		return Invalid()
	}

	o := options{mode: ModeMean}
	for _, opt := range opts {
		opt(&o)
	}

	result := dto.ExtractionResult{
		Fields:          make(map[dto.FieldName]float64, len(cascades)),
		FieldConfidence: make(map[dto.FieldName]float64, len(cascades)),
		ConfidenceMode:  string(o.mode),
		Notes:           []string{},
	}

	outcomes := make([]Outcome, 0, len(cascades))
	for _, c := range cascades {
		out := c.Run(doc)
		outcomes = append(outcomes, out)

		result.Notes = append(result.Notes, out.Notes...)
		result.FieldConfidence[c.Field] = round2(out.Confidence)
		if out.Found {
			result.Fields[c.Field] = out.Value
		}
	}

	result.Confidence = round2(clamp(combine(o.mode, outcomes)))
	return result
}

func combine(mode Mode, outcomes []Outcome) float64 {
	switch mode {
	case ModeMax:
		best := 0.0
		for _, out := range outcomes {
			best = max(best, out.Confidence)
		}
		return best
	case ModeShared:
		return sharedScore(outcomes)
	default:
		if len(outcomes) == 0 {
			return 0
		}
		total := 0.0
		for _, out := range outcomes {
			total += out.Confidence
		}
		return total / float64(len(outcomes))
	}
}

// sharedScore replays all increments through a single counter.
func sharedScore(outcomes []Outcome) float64 {
	total := 0.0
	for _, out := range outcomes {
		for _, delta := range out.Increments {
			total = clamp(total + delta)
		}
		if out.Field == dto.FieldLoanAmount && !out.Found {
			total = 0
		}
	}
	return total
}
