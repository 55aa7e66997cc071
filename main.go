// Command loanocr extracts loan terms (amount, interest rate, EMI and
// tenure) from loan documents.
//
// Usage:
//
//	loanocr serve
//	loanocr extract letter.pdf --format markdown
//	loanocr extract - --text < ocr.txt
//	loanocr clean ocr.txt
package main

func main() {
	Execute()
}
