// Package normalize produces canonical comparison keys for supplier and
// bank names extracted from guarantee spreadsheets. Keys are stable across
// case, diacritic, legal-suffix and whitespace variation so that the same
// real-world entity always normalizes to the same string.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Domain selects which dictionary a name is matched against.
type Domain string

const (
	DomainSupplier Domain = "supplier"
	DomainBank     Domain = "bank"
)

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	return d == DomainSupplier || d == DomainBank
}

// Arabic letter variants folded to a single form before comparison.
// Covers the alef family, teh marbuta and the yeh variants that show up
// interchangeably in spreadsheet cells.
var arabicFold = map[rune]rune{
	'آ': 'ا', // alef madda -> alef
	'أ': 'ا', // alef hamza above -> alef
	'إ': 'ا', // alef hamza below -> alef
	'ٱ': 'ا', // alef wasla -> alef
	'ة': 'ه', // teh marbuta -> heh
	'ى': 'ي', // alef maksura -> yeh
	'ی': 'ي', // farsi yeh -> yeh
	'ک': 'ك', // keheh -> kaf
}

// Harakat and tatweel carry no lexical meaning in entity names.
func isArabicMark(r rune) bool {
	if r >= 'ً' && r <= 'ٟ' {
		return true
	}
	return r == 'ـ' || r == 'ٰ'
}

// Generic legal-entity tokens stripped from both domains. Whole-token
// match only; lists are stored in already-folded form.
var sharedStopWords = map[string]struct{}{
	"co":            {},
	"company":       {},
	"corp":          {},
	"corporation":   {},
	"est":           {},
	"establishment": {},
	"inc":           {},
	"limited":       {},
	"llc":           {},
	"ltd":           {},
	"شركه":          {},
	"مؤسسه":         {},
	"المحدوده":      {},
	"محدوده":        {},
}

var supplierStopWords = map[string]struct{}{
	"trading":  {},
	"تجاره":    {},
	"للتجاره":  {},
	"التجاريه": {},
}

var bankStopWords = map[string]struct{}{
	"bank":   {},
	"banque": {},
	"بنك":    {},
	"البنك":  {},
	"مصرف":   {},
	"المصرف": {},
}

// Key returns the canonical comparison key for a raw display name.
// Empty input (or input that is nothing but punctuation and legal
// boilerplate) yields the empty string; callers must treat that as
// "no normalization possible" and skip fuzzy scoring.
//
// Key is idempotent: Key(Key(x), d) == Key(x, d).
func Key(raw string, domain Domain) string {
	s := norm.NFC.String(raw)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isArabicMark(r) {
			continue
		}
		if folded, ok := arabicFold[r]; ok {
			r = folded
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	kept := tokens[:0]
	for _, tok := range tokens {
		if isStopWord(tok, domain) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// StrictKey is Key with all whitespace removed. It is used only for
// byte-for-byte duplicate detection when adding dictionary entries,
// never for fuzzy scoring.
func StrictKey(raw string, domain Domain) string {
	return strings.ReplaceAll(Key(raw, domain), " ", "")
}

func isStopWord(token string, domain Domain) bool {
	if _, ok := sharedStopWords[token]; ok {
		return true
	}
	switch domain {
	case DomainSupplier:
		_, ok := supplierStopWords[token]
		return ok
	case DomainBank:
		_, ok := bankStopWords[token]
		return ok
	}
	return false
}
