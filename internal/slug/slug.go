// Package slug derives URL slugs and stock-keeping units from catalog names.
package slug

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns free text into a lowercase, hyphen-separated ASCII token.
// Diacritics are stripped and letters without a decomposition (ø, ß, æ, ł)
// are transliterated. Digit groups such as "1,000" are joined and every run of
// characters outside [a-z0-9] collapses into a single hyphen.
func Slugify(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	src := []rune(strings.ToLower(unidecode.Unidecode(folded)))

	var b strings.Builder
	b.Grow(len(src))
	pendingDash := false
	for i, r := range src {
		if r == ',' && i > 0 && i < len(src)-1 && isDigit(src[i-1]) && isDigit(src[i+1]) {
			continue
		}
		if isDigit(r) || (r >= 'a' && r <= 'z') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// ProductSlug builds the slug of a product. The brand name is omitted when the
// product name already starts with it.
func ProductSlug(categoryCode, brandName, productName string) string {
	source := categoryCode + " " + brandName + " " + productName
	if strings.HasPrefix(strings.ToLower(productName), strings.ToLower(brandName)) {
		source = categoryCode + " " + productName
	}
	return Slugify(source)
}

// VariantSKU builds the uppercase SKU of a variant.
func VariantSKU(categoryCode, brandCode, productName, attributes string) string {
	return strings.ToUpper(Slugify(categoryCode + " " + brandCode + " " + productName + " " + attributes))
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
