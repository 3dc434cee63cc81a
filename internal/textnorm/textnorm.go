// Package textnorm turns free-text quantities and FAQ topics into the
// canonical values the order store matches on.
package textnorm

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var numberWords = map[string]int{
	"un":     1,
	"uno":    1,
	"una":    1,
	"dos":    2,
	"tres":   3,
	"cuatro": 4,
	"cinco":  5,
	"seis":   6,
	"siete":  7,
	"ocho":   8,
	"nueve":  9,
	"diez":   10,
}

// Plural roots are matched accent-folded. Only these words are singularised.
var (
	rootsPluralES = map[string]struct{}{
		"horario":    {},
		"devolucion": {},
		"envio":      {},
	}
	rootsPluralS = map[string]struct{}{
		"garantia":    {},
		"envio":       {},
		"horario":     {},
		"devolucione": {},
	}
)

// Lower lower-cases text with Spanish casing rules. Casers carry state,
// so each call builds its own.
func Lower(text string) string {
	return cases.Lower(language.Spanish).String(text)
}

// ParseQuantity reads "dos", "Una" or "7" as a quantity. Anything else,
// including "siete mil", reports false.
func ParseQuantity(text string) (int, bool) {
	t := Lower(strings.TrimSpace(text))
	if n, ok := numberWords[t]; ok {
		return n, true
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeTopicKeyword singularises the known FAQ topic words
// ("horarios" -> "horario", "garantías" -> "garantía") and lower-cases
// everything else.
func NormalizeTopicKeyword(text string) string {
	t := Lower(text)
	r := []rune(t)

	if strings.HasSuffix(t, "es") {
		if _, ok := rootsPluralES[Fold(string(r[:len(r)-2]))]; ok {
			return string(r[:len(r)-2])
		}
	}
	if strings.HasSuffix(t, "s") {
		if _, ok := rootsPluralS[Fold(string(r[:len(r)-1]))]; ok {
			return string(r[:len(r)-1])
		}
	}
	return t
}

// Fold lower-cases text and removes diacritics: "Envío" -> "envio".
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return Lower(out)
}

// DigitsOnly keeps the ASCII digits of text: "pedido #abc123" -> "123".
// Other Unicode digits, such as Arabic-Indic "٣", are dropped.
func DigitsOnly(text string) string {
	var b strings.Builder
	for _, c := range text {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ContainsAny reports whether the lower-cased message contains one of phrases.
func ContainsAny(message string, phrases []string) bool {
	m := Lower(message)
	for _, p := range phrases {
		if strings.Contains(m, p) {
			return true
		}
	}
	return false
}
