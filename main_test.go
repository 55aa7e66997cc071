package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const loanSentence = "Loan Amount INR 500000 at interest rate 8.5% per annum, tenure 24 months, EMI Rs 22000"

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	cmd := NewRootCmd()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["extract"])
	assert.True(t, names["clean"])
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestCleanStdin(t *testing.T) {
	out, err := runCLI(t, "Loan   Amount INR 5,00,000", "clean", "-")

	require.NoError(t, err)
	assert.Equal(t, "loan amount Rs 500000\n", out)
}

func TestExtractStdinJSON(t *testing.T) {
	out, err := runCLI(t, loanSentence, "extract", "-")
	require.NoError(t, err)

	var result dto.ExtractionResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 500000.0, result.Fields[dto.FieldLoanAmount])
	assert.Equal(t, 22000.0, result.Fields[dto.FieldEMI])
	assert.InDelta(t, 0.36, result.Confidence, 1e-9)
	assert.Equal(t, "mean", result.ConfidenceMode)
}

func TestExtractTextFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocr.txt")
	require.NoError(t, os.WriteFile(path, []byte(loanSentence), 0o600))

	out, err := runCLI(t, "", "extract", path, "--text", "--format", "yaml", "--mode", "max")
	require.NoError(t, err)

	var result dto.ExtractionResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &result))
	assert.Equal(t, 8.5, result.Fields[dto.FieldInterestRate])
	assert.InDelta(t, 0.45, result.Confidence, 1e-9)
	assert.Equal(t, "max", result.ConfidenceMode)
}

func TestExtractMarkdown(t *testing.T) {
	out, err := runCLI(t, loanSentence, "extract", "-", "--format", "markdown")

	require.NoError(t, err)
	assert.Contains(t, out, "# Loan Extraction Report")
	assert.Contains(t, out, "`stdin`")
	assert.Contains(t, out, "Final loan amount confidence score: 0.45")
}

func TestExtractInvalidInput(t *testing.T) {
	out, err := runCLI(t, "   ", "extract", "-")

	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":{},"confidence":0,"notes":["Invalid OCR text received"]}`, out)
}

func TestExtractRejectsBadFlags(t *testing.T) {
	_, err := runCLI(t, loanSentence, "extract", "-", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = runCLI(t, loanSentence, "extract", "-", "--mode", "median")
	assert.ErrorContains(t, err, "unknown confidence mode")

	_, err = runCLI(t, "", "extract", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorContains(t, err, "failed to read")
}
