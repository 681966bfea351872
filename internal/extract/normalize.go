package extract

import (
	"regexp"
	"strings"
)

// PDF text extraction splits single tokens across whitespace-separated
// fragments ("27 / 11 / 2025", "R $ 1.234,56"). Every row regex downstream
// assumes canonical spacing, so all extractors normalize first.
var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	slashSpacing   = regexp.MustCompile(`\s*/\s*`)
	currencySymbol = regexp.MustCompile(`R\s*\$\s*`)
)

// NormalizeText collapses whitespace runs to single spaces, removes spacing
// around date slashes and inside the R$ currency symbol. Running it twice
// yields the same string as running it once.
func NormalizeText(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = slashSpacing.ReplaceAllString(s, "/")
	s = currencySymbol.ReplaceAllString(s, "R$")
	return strings.TrimSpace(s)
}

// accentReplacer strips the accented characters that appear in Portuguese
// statement anchors, so anchor searches can fall back to an accent-insensitive
// comparison when the extracted text mangled the encoding.
var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "ê", "e", "è", "e",
	"í", "i", "î", "i",
	"ó", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "û", "u", "ü", "u",
	"ç", "c",
	"Á", "A", "À", "A", "Â", "A", "Ã", "A", "Ä", "A",
	"É", "E", "Ê", "E", "È", "E",
	"Í", "I", "Î", "I",
	"Ó", "O", "Ô", "O", "Õ", "O", "Ö", "O",
	"Ú", "U", "Û", "U", "Ü", "U",
	"Ç", "C",
)

func stripAccents(s string) string {
	return accentReplacer.Replace(s)
}

// foldKey upper-cases and accent-strips text for marker comparisons.
func foldKey(s string) string {
	return strings.ToUpper(stripAccents(s))
}
