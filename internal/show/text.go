package show

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText NFC-normalizes s and trims surrounding whitespace.
// Text typed on different consoles (or pasted from script PDFs) must compare
// equal when it renders equal.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Normalize returns c with both fields normalized.
func (c CueContent) Normalize() CueContent {
	return CueContent{
		LineText: NormalizeText(c.LineText),
		Notes:    NormalizeText(c.Notes),
	}
}

// Normalize returns s with all fields normalized.
func (s Shot) Normalize() Shot {
	return Shot{
		Subject:  NormalizeText(s.Subject),
		ShotType: NormalizeText(s.ShotType),
		Notes:    NormalizeText(s.Notes),
	}
}
